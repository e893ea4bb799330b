package game

import (
	"fmt"
	"log"
	"time"

	"quiz-arena/internal/models"
	"quiz-arena/pkg/cache"

	"github.com/go-playground/validator/v10"
)

// Engine owns the session lifecycle: it starts sessions, assembles and pins the
// question set, reconciles finish submissions against authoritative question
// records, and finalizes exactly once.
type Engine struct {
	repo     *Repository
	bank     *QuestionBank
	cache    *cache.RedisCache
	validate *validator.Validate
	now      func() time.Time
}

func NewEngine(repo *Repository, bank *QuestionBank, redisCache *cache.RedisCache) *Engine {
	return &Engine{
		repo:     repo,
		bank:     bank,
		cache:    redisCache,
		validate: validator.New(),
		now:      time.Now,
	}
}

// NewEngineWithClock is for deterministic timestamps in tests.
func NewEngineWithClock(repo *Repository, bank *QuestionBank, redisCache *cache.RedisCache, now func() time.Time) *Engine {
	e := NewEngine(repo, bank, redisCache)
	e.now = now
	return e
}

// GetGameBySlug resolves a game through the cache first, falling back to the
// database and refreshing the cache on a miss.
func (e *Engine) GetGameBySlug(slug string) (*models.Game, error) {
	if e.cache != nil {
		if game, err := e.cache.GetGame(slug); err == nil {
			return game, nil
		}
	}

	game, err := e.repo.GetGameBySlug(slug)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.SetGame(game); err != nil {
			log.Printf("Error caching game %s: %v", slug, err)
		}
	}
	return game, nil
}

func (e *Engine) ListActiveGames() ([]models.Game, error) {
	return e.repo.ListActiveGames()
}

// Start returns the client's in-progress session for the game, creating one when
// none exists. Calling it again without finishing returns the same session.
func (e *Engine) Start(clientID uint, slug string) (*models.GameSession, *models.Game, error) {
	game, err := e.GetGameBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	if !game.IsActive {
		return nil, nil, ErrGameNotFound
	}

	session, err := e.repo.StartSession(clientID, game.ID, e.now())
	if err != nil {
		return nil, nil, err
	}
	return session, game, nil
}

// PlayState is everything the play screen needs for one session.
type PlayState struct {
	Game             *models.Game
	Session          *models.GameSession
	Questions        []models.Question
	CurrentIndex     int
	LivesRemaining   int
	TimeLimitSeconds int
	TimeRemaining    int
}

// LoadForPlay returns the pinned question set and timer state for an in-progress
// session. The first load draws the set from the bank and persists the ordered
// question ids along with the initial clock, so a page refresh replays the same
// set instead of drawing a fresh one.
func (e *Engine) LoadForPlay(clientID uint, slug string, sessionID uint) (*PlayState, error) {
	game, err := e.GetGameBySlug(slug)
	if err != nil {
		return nil, err
	}

	session, err := e.repo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.ClientID != clientID || session.GameID != game.ID {
		return nil, ErrUnauthorized
	}
	if session.Status != models.SessionInProgress {
		return nil, ErrUnauthorized
	}

	if !session.TimeInitialized {
		set, err := e.bank.SelectQuestionSet(game.RequiredCounts())
		if err != nil {
			return nil, err
		}
		order := make(models.UintList, len(set))
		for i, q := range set {
			order[i] = q.ID
		}
		session.QuestionOrder = order
		session.TimeRemaining = game.TimeLimitSeconds()
		session.TimeInitialized = true
		if err := e.repo.SaveSession(session); err != nil {
			return nil, err
		}
	}

	questions, err := e.resolveQuestionOrder(session.QuestionOrder)
	if err != nil {
		return nil, err
	}

	return &PlayState{
		Game:             game,
		Session:          session,
		Questions:        questions,
		CurrentIndex:     session.QuestionsAnswered,
		LivesRemaining:   session.LivesRemaining(),
		TimeLimitSeconds: game.TimeLimitSeconds(),
		TimeRemaining:    session.TimeRemaining,
	}, nil
}

// resolveQuestionOrder expands a pinned id sequence to full records, preserving
// order and skipping questions deleted since the session began.
func (e *Engine) resolveQuestionOrder(order models.UintList) ([]models.Question, error) {
	byID, err := e.repo.GetQuestionsByIDs(order)
	if err != nil {
		return nil, err
	}
	questions := make([]models.Question, 0, len(order))
	for _, id := range order {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// AnswerSubmission is one client-reported answer. Only the selected answer text
// and timing are trusted; correctness is recomputed server-side.
type AnswerSubmission struct {
	QuestionID     uint   `json:"question_id" validate:"required"`
	SelectedAnswer string `json:"selected_answer" validate:"required"`
	IsCorrect      *bool  `json:"is_correct" validate:"required"`
	TimeTaken      *int   `json:"time_taken" validate:"required,gte=0"`
}

// FinishSubmission is the bulk payload closing a session. Every field is required
// on the wire; the aggregate counters are still recomputed from the answer list
// rather than persisted verbatim.
type FinishSubmission struct {
	Answers           []AnswerSubmission `json:"answers" validate:"omitempty,dive"`
	FinalScore        *int               `json:"final_score" validate:"required,gte=0"`
	LivesRemaining    *int               `json:"lives_remaining" validate:"required,gte=0,lte=3"`
	TimeRemaining     *int               `json:"time_remaining" validate:"required,gte=0"`
	TotalTimeTaken    *int               `json:"total_time_taken" validate:"required,gte=0"`
	EndReason         string             `json:"end_reason" validate:"required,oneof=timer lives_exhausted completed user_exit"`
	QuestionsAnswered *int               `json:"questions_answered" validate:"required,gte=0"`
	CorrectAnswers    *int               `json:"correct_answers" validate:"required,gte=0"`
	IncorrectAnswers  *int               `json:"incorrect_answers" validate:"required,gte=0,lte=3"`
}

// Finish closes an in-progress session. It rebuilds the exam data from the
// submitted answers against authoritative question records, recomputes every
// counter and the score, and applies the terminal state behind a status guard.
// Finishing an already finished session returns the stored state unchanged.
func (e *Engine) Finish(clientID uint, slug string, sessionID uint, sub *FinishSubmission) (*models.GameSession, error) {
	game, err := e.GetGameBySlug(slug)
	if err != nil {
		return nil, err
	}

	session, err := e.repo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.ClientID != clientID || session.GameID != game.ID {
		return nil, ErrUnauthorized
	}
	// The already-finished check comes before payload validation: a duplicate
	// finish is a success returning the stored state, whatever its body looks like.
	if session.Status != models.SessionInProgress {
		log.Printf("Session %d already finished, returning stored state", session.ID)
		return session, nil
	}

	if err := e.validateSubmission(sub); err != nil {
		return nil, err
	}
	if err := validateAnswersServed(sub.Answers, session.QuestionOrder); err != nil {
		return nil, err
	}

	examData, err := e.reconcileAnswers(sub.Answers)
	if err != nil {
		return nil, err
	}

	correct, incorrect := 0, 0
	for _, record := range examData {
		if record.IsCorrect {
			correct++
		} else {
			incorrect++
		}
	}

	endedAt := e.now()
	session.Status = models.SessionCompleted
	session.Score = AggregateScore(examData)
	session.CorrectAnswers = correct
	session.IncorrectAnswers = incorrect
	session.QuestionsAnswered = len(examData)
	session.TimeRemaining = *sub.TimeRemaining
	session.TotalTimeTaken = *sub.TotalTimeTaken
	session.ExamData = examData
	session.EndedAt = &endedAt
	session.EndReason = models.EndReason(sub.EndReason)

	applied, err := e.repo.FinalizeSession(session)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race to a concurrent finish; the stored state stands.
		log.Printf("Session %d was finished concurrently, returning stored state", session.ID)
		return e.repo.GetSessionByID(sessionID)
	}

	// Stats refresh is best effort; a failure must not undo the finish.
	if err := e.RecomputeStats(game); err != nil {
		log.Printf("Warning: stats recompute for game %d failed: %v", game.ID, err)
	}

	return session, nil
}

// validateAnswersServed rejects answers that could not have come from actual
// play: every question_id must be in the session's pinned question set, and no
// question can be answered twice.
func validateAnswersServed(answers []AnswerSubmission, order models.UintList) error {
	served := make(map[uint]bool, len(order))
	for _, id := range order {
		served[id] = true
	}

	fields := make(map[string]string)
	answered := make(map[uint]bool, len(answers))
	for i, a := range answers {
		key := fmt.Sprintf("answers[%d].question_id", i)
		switch {
		case !served[a.QuestionID]:
			fields[key] = "not part of this session"
		case answered[a.QuestionID]:
			fields[key] = "answered more than once"
		}
		answered[a.QuestionID] = true
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// reconcileAnswers rebuilds the answer log server-side. The client's is_correct
// flag is ignored: correctness comes from comparing the selected answer text to
// the stored correct choice, and points come from the question's tier. Answers
// referencing deleted questions score nothing. The log stops at the third
// incorrect answer, since the game ends there and no later question is served.
func (e *Engine) reconcileAnswers(answers []AnswerSubmission) (models.AnswerLog, error) {
	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}

	byID, err := e.repo.GetQuestionsByIDs(ids)
	if err != nil {
		return nil, err
	}

	answeredAt := e.now()
	incorrect := 0
	examData := make(models.AnswerLog, 0, len(answers))
	for _, a := range answers {
		record := models.AnswerRecord{
			QuestionID:     a.QuestionID,
			SelectedAnswer: a.SelectedAnswer,
			TimeTaken:      *a.TimeTaken,
			AnsweredAt:     answeredAt,
		}
		if question, ok := byID[a.QuestionID]; ok {
			record.DifficultyLevel = question.DifficultyLevel
			record.IsCorrect = a.SelectedAnswer == question.CorrectAnswerText()
			if record.IsCorrect {
				record.PointsEarned = PointsFor(question.DifficultyLevel)
			}
		}
		examData = append(examData, record)
		if !record.IsCorrect {
			incorrect++
			if incorrect >= models.MaxLives {
				break
			}
		}
	}
	return examData, nil
}

func (e *Engine) validateSubmission(sub *FinishSubmission) error {
	err := e.validate.Struct(sub)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			fields[verr.Namespace()] = verr.Tag()
		}
	} else {
		fields["submission"] = err.Error()
	}
	return &ValidationError{Fields: fields}
}

// GetOwnedSession fetches a session for result display, enforcing that it belongs
// to the requesting client and the named game.
func (e *Engine) GetOwnedSession(clientID uint, slug string, sessionID uint) (*models.GameSession, *models.Game, error) {
	game, err := e.GetGameBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	session, err := e.repo.GetSessionByID(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.ClientID != clientID || session.GameID != game.ID {
		return nil, nil, ErrUnauthorized
	}
	return session, game, nil
}

// SessionHistory returns the client's finished sessions for the history screen.
func (e *Engine) SessionHistory(clientID uint) ([]models.GameSession, error) {
	return e.repo.ListSessionsByClient(clientID)
}
