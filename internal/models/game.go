package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyOrder is the serving order for question blocks within a session.
var DifficultyOrder = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

type QuestionStatus string

const (
	QuestionPending  QuestionStatus = "pending"
	QuestionApproved QuestionStatus = "approved"
	QuestionRejected QuestionStatus = "rejected"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

type EndReason string

const (
	EndReasonTimer          EndReason = "timer"
	EndReasonLivesExhausted EndReason = "lives_exhausted"
	EndReasonCompleted      EndReason = "completed"
	EndReasonUserExit       EndReason = "user_exit"
)

// MaxLives is the wrong-answer tolerance; the 3rd wrong answer ends the session.
const MaxLives = 3

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	return string(data), err
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// UintList is stored as a JSON array in a text column.
type UintList []uint

func (l UintList) Value() (driver.Value, error) {
	if l == nil {
		l = UintList{}
	}
	data, err := json.Marshal(l)
	return string(data), err
}

func (l *UintList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported column type for JSON scan")
	}
}

// GameStats is the display aggregate recomputed after each completed session.
type GameStats struct {
	TotalPlayers           int     `json:"total_players"`
	AverageScore           float64 `json:"average_score"`
	CompletionRate         string  `json:"completion_rate"`
	AverageTimePerQuestion float64 `json:"average_time_per_question"`
}

func (s GameStats) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	return string(data), err
}

func (s *GameStats) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// ZeroStats are the defaults for a game with no completed sessions.
func ZeroStats() GameStats {
	return GameStats{TotalPlayers: 0, AverageScore: 0, CompletionRate: "0%", AverageTimePerQuestion: 0}
}

type Game struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	Name             string         `json:"name" gorm:"not null"`
	Slug             string         `json:"slug" gorm:"unique;not null"`
	Difficulty       Difficulty     `json:"difficulty"`
	TimeLimitMinutes int            `json:"time_limit_minutes" gorm:"not null"`
	EasyCount        int            `json:"easy_count"`
	MediumCount      int            `json:"medium_count"`
	HardCount        int            `json:"hard_count"`
	// PointsPerQuestion is legacy config; actual points are tiered (see game.PointsFor).
	PointsPerQuestion int `json:"points_per_question"`
	// SkipLimit is carried through from game config but not enforced anywhere yet.
	SkipLimit int        `json:"skip_limit"`
	Topics    StringList `json:"topics" gorm:"type:text"`
	Rules     StringList `json:"rules" gorm:"type:text"`
	Stats     GameStats  `json:"stats" gorm:"type:text"`
	IsActive  bool       `json:"is_active" gorm:"default:false"`
}

// QuestionCount is the target set size for a session of this game.
func (g *Game) QuestionCount() int {
	return g.EasyCount + g.MediumCount + g.HardCount
}

// RequiredCounts maps each tier to its quota for this game.
func (g *Game) RequiredCounts() map[Difficulty]int {
	return map[Difficulty]int{
		DifficultyEasy:   g.EasyCount,
		DifficultyMedium: g.MediumCount,
		DifficultyHard:   g.HardCount,
	}
}

// TimeLimitSeconds is the session budget handed to the client timer.
func (g *Game) TimeLimitSeconds() int {
	return g.TimeLimitMinutes * 60
}

type Question struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	QuestionText    string         `json:"question_text" gorm:"not null"`
	Choices         StringList     `json:"choices" gorm:"type:text;not null"`
	CorrectChoice   int            `json:"correct_choice" gorm:"not null"` // 1-based index into Choices
	DifficultyLevel Difficulty     `json:"difficulty_level" gorm:"index"`
	Status          QuestionStatus `json:"status" gorm:"index;default:pending"`
}

// CorrectAnswerText returns the literal text of the correct choice, or "" when the
// stored index is out of range (moderation guarantees 1..4, but never trust it blindly).
func (q *Question) CorrectAnswerText() string {
	if q.CorrectChoice < 1 || q.CorrectChoice > len(q.Choices) {
		return ""
	}
	return q.Choices[q.CorrectChoice-1]
}

// AnswerRecord is one entry of a session's exam data log.
type AnswerRecord struct {
	QuestionID      uint       `json:"question_id"`
	SelectedAnswer  string     `json:"selected_answer"`
	IsCorrect       bool       `json:"is_correct"`
	TimeTaken       int        `json:"time_taken"`
	PointsEarned    int        `json:"points_earned"`
	DifficultyLevel Difficulty `json:"difficulty_level"`
	AnsweredAt      time.Time  `json:"answered_at"`
}

// AnswerLog is the ordered exam data, stored as a JSON array.
type AnswerLog []AnswerRecord

func (l AnswerLog) Value() (driver.Value, error) {
	if l == nil {
		l = AnswerLog{}
	}
	data, err := json.Marshal(l)
	return string(data), err
}

func (l *AnswerLog) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type GameSession struct {
	ID                uint          `json:"id" gorm:"primaryKey"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	ClientID          uint          `json:"client_id" gorm:"index:idx_client_game;uniqueIndex:uniq_active_session,where:status = 'in_progress';not null"`
	GameID            uint          `json:"game_id" gorm:"index:idx_client_game;uniqueIndex:uniq_active_session;not null"`
	Status            SessionStatus `json:"status" gorm:"index;default:in_progress"`
	Score             int           `json:"score"`
	CorrectAnswers    int           `json:"correct_answers"`
	IncorrectAnswers  int           `json:"incorrect_answers"`
	QuestionsAnswered int           `json:"questions_answered"`
	// TimeRemaining is seconds left on the clock; 0 until the first play load sets it.
	TimeRemaining   int        `json:"time_remaining"`
	TimeInitialized bool       `json:"time_initialized"`
	TotalTimeTaken  int        `json:"total_time_taken"`
	QuestionOrder   UintList   `json:"question_order" gorm:"type:text"`
	ExamData        AnswerLog  `json:"exam_data" gorm:"type:text"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	EndReason       EndReason  `json:"end_reason"`
}

// LivesRemaining derives lives from the wrong-answer counter.
func (s *GameSession) LivesRemaining() int {
	lives := MaxLives - s.IncorrectAnswers
	if lives < 0 {
		return 0
	}
	return lives
}

type Client struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	Username  string         `json:"username" gorm:"unique;not null"`
	Email     string         `json:"email" gorm:"unique;not null"`
	Password  string         `json:"-" gorm:"not null"`
	Role      string         `json:"role" gorm:"default:client"`
}
