package game

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"quiz-arena/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Client{},
		&models.Game{},
		&models.Question{},
		&models.GameSession{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func seedGame(t *testing.T, db *gorm.DB) *models.Game {
	t.Helper()
	game := &models.Game{
		Name:             "General Knowledge",
		Slug:             "general-knowledge",
		Difficulty:       models.DifficultyMedium,
		TimeLimitMinutes: 6,
		EasyCount:        10,
		MediumCount:      6,
		HardCount:        5,
		Topics:           models.StringList{"history", "science"},
		Rules:            models.StringList{"three lives", "answer before the timer runs out"},
		Stats:            models.ZeroStats(),
		IsActive:         true,
	}
	if err := db.Create(game).Error; err != nil {
		t.Fatalf("failed to seed game: %v", err)
	}
	return game
}

// seedQuestions creates n approved questions per tier. The correct choice is
// always the second one ("B-<tier>-<i>").
func seedQuestions(t *testing.T, db *gorm.DB, counts map[models.Difficulty]int) map[models.Difficulty][]models.Question {
	t.Helper()
	seeded := make(map[models.Difficulty][]models.Question)
	for _, tier := range models.DifficultyOrder {
		for i := 0; i < counts[tier]; i++ {
			q := models.Question{
				QuestionText:    fmt.Sprintf("%s question %d", tier, i),
				Choices:         choicesFor(tier, i),
				CorrectChoice:   2,
				DifficultyLevel: tier,
				Status:          models.QuestionApproved,
			}
			if err := db.Create(&q).Error; err != nil {
				t.Fatalf("failed to seed question: %v", err)
			}
			seeded[tier] = append(seeded[tier], q)
		}
	}
	return seeded
}

func choicesFor(tier models.Difficulty, i int) models.StringList {
	return models.StringList{
		fmt.Sprintf("A-%s-%d", tier, i),
		fmt.Sprintf("B-%s-%d", tier, i),
		fmt.Sprintf("C-%s-%d", tier, i),
		fmt.Sprintf("D-%s-%d", tier, i),
	}
}

func correctAnswerOf(q models.Question) string {
	return q.Choices[q.CorrectChoice-1]
}

func wrongAnswerOf(q models.Question) string {
	return q.Choices[0]
}

var testClock = func() time.Time {
	return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T, db *gorm.DB) (*Engine, *Repository) {
	t.Helper()
	repo := NewRepository(db)
	bank := NewQuestionBankWithRand(repo, rand.New(rand.NewSource(1)))
	engine := NewEngineWithClock(repo, bank, nil, testClock)
	return engine, repo
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// submissionFor builds a well-formed finish payload from (question, givenAnswer)
// pairs. Per-answer is_correct is filled from the client's perspective; the engine
// is expected to ignore it.
func submissionFor(pairs []answeredQuestion, endReason string) *FinishSubmission {
	answers := make([]AnswerSubmission, 0, len(pairs))
	score := 0
	correct := 0
	for _, p := range pairs {
		isCorrect := p.given == correctAnswerOf(p.question)
		answers = append(answers, AnswerSubmission{
			QuestionID:     p.question.ID,
			SelectedAnswer: p.given,
			IsCorrect:      boolPtr(isCorrect),
			TimeTaken:      intPtr(p.timeTaken),
		})
		if isCorrect {
			correct++
			score += PointsFor(p.question.DifficultyLevel)
		}
	}
	incorrect := len(pairs) - correct
	return &FinishSubmission{
		Answers:           answers,
		FinalScore:        intPtr(score),
		LivesRemaining:    intPtr(models.MaxLives - incorrect),
		TimeRemaining:     intPtr(300),
		TotalTimeTaken:    intPtr(60),
		EndReason:         endReason,
		QuestionsAnswered: intPtr(len(pairs)),
		CorrectAnswers:    intPtr(correct),
		IncorrectAnswers:  intPtr(incorrect),
	}
}

type answeredQuestion struct {
	question  models.Question
	given     string
	timeTaken int
}
