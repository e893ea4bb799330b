package game

import (
	"testing"

	"quiz-arena/internal/models"
)

func TestProjectJoinsQuestions(t *testing.T) {
	db := newTestDB(t)
	g := seedGame(t, db)
	seeded := seedQuestions(t, db, defaultCounts())
	engine, repo := newTestEngine(t, db)

	session, _, err := engine.Start(1, g.Slug)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := engine.LoadForPlay(1, g.Slug, session.ID); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	q1 := seeded[models.DifficultyEasy][0]
	q2 := seeded[models.DifficultyHard][0]
	sub := submissionFor([]answeredQuestion{
		{q1, correctAnswerOf(q1), 5},
		{q2, wrongAnswerOf(q2), 9},
	}, "user_exit")
	finished, err := engine.Finish(1, g.Slug, session.ID, sub)
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	projector := NewResultProjector(repo)
	result, err := projector.Project(finished, g)
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}

	if result.Session.Score != 3 || result.Session.MaxScore != 100 {
		t.Fatalf("summary wrong: score=%d max=%d", result.Session.Score, result.Session.MaxScore)
	}
	if len(result.Answers) != 2 {
		t.Fatalf("expected 2 answer views, got %d", len(result.Answers))
	}
	if result.Answers[0].Question == nil || result.Answers[0].Question.ID != q1.ID {
		t.Fatalf("first answer not joined to question %d", q1.ID)
	}
	// The result view is allowed to reveal the correct choice.
	if result.Answers[0].Question.CorrectChoice != q1.CorrectChoice {
		t.Fatalf("result view missing correct choice")
	}
	if !result.Answers[0].Answer.IsCorrect || result.Answers[1].Answer.IsCorrect {
		t.Fatalf("answer correctness lost in projection")
	}
}

func TestProjectToleratesDeletedQuestion(t *testing.T) {
	db := newTestDB(t)
	g := seedGame(t, db)
	seeded := seedQuestions(t, db, defaultCounts())
	engine, repo := newTestEngine(t, db)

	session, _, err := engine.Start(1, g.Slug)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := engine.LoadForPlay(1, g.Slug, session.ID); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	q1 := seeded[models.DifficultyEasy][0]
	q2 := seeded[models.DifficultyEasy][1]
	sub := submissionFor([]answeredQuestion{
		{q1, correctAnswerOf(q1), 5},
		{q2, correctAnswerOf(q2), 5},
	}, "user_exit")
	finished, err := engine.Finish(1, g.Slug, session.ID, sub)
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	// Question deleted after play; the result must still render.
	if err := db.Delete(&q2).Error; err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	projector := NewResultProjector(repo)
	result, err := projector.Project(finished, g)
	if err != nil {
		t.Fatalf("project failed after deletion: %v", err)
	}
	if len(result.Answers) != 2 {
		t.Fatalf("expected both entries, got %d", len(result.Answers))
	}
	if result.Answers[1].Question != nil {
		t.Fatalf("deleted question should project as nil")
	}
	if result.Answers[1].Answer.PointsEarned == 0 {
		t.Fatalf("stored points must survive question deletion")
	}
}
