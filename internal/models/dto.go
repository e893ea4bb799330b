package models

// QuestionDTO is the wire shape served to players during play. The correct choice is
// only populated for admin/moderation views, never for the play payload.
type QuestionDTO struct {
	ID              uint       `json:"id"`
	QuestionText    string     `json:"question_text"`
	Choices         []string   `json:"choices"`
	DifficultyLevel Difficulty `json:"difficulty_level"`
	CorrectChoice   int        `json:"correct_choice,omitempty"`
}

func (q Question) ToDTO(includeAnswer bool) QuestionDTO {
	dto := QuestionDTO{
		ID:              q.ID,
		QuestionText:    q.QuestionText,
		Choices:         append([]string(nil), q.Choices...),
		DifficultyLevel: q.DifficultyLevel,
	}
	if includeAnswer {
		dto.CorrectChoice = q.CorrectChoice
	}
	return dto
}

// SessionSummaryDTO is the session view used by the result and history screens.
type SessionSummaryDTO struct {
	ID                uint          `json:"id"`
	GameID            uint          `json:"game_id"`
	Status            SessionStatus `json:"status"`
	Score             int           `json:"score"`
	MaxScore          int           `json:"max_score"`
	CorrectAnswers    int           `json:"correct_answers"`
	IncorrectAnswers  int           `json:"incorrect_answers"`
	QuestionsAnswered int           `json:"questions_answered"`
	TotalTimeTaken    int           `json:"total_time_taken"`
	EndReason         EndReason     `json:"end_reason"`
	StartedAt         string        `json:"started_at"`
	EndedAt           string        `json:"ended_at,omitempty"`
}
