package game

import (
	"time"

	"quiz-arena/internal/models"
)

// ResultProjector assembles a finished session's answer log with question details
// for the result screen.
type ResultProjector struct {
	repo *Repository
}

func NewResultProjector(repo *Repository) *ResultProjector {
	return &ResultProjector{repo: repo}
}

// AnswerView pairs one answer record with its question. Question is nil when the
// question was deleted after the session was played; the entry still renders.
type AnswerView struct {
	Answer   models.AnswerRecord `json:"answer"`
	Question *models.QuestionDTO `json:"question"`
}

type Result struct {
	Session models.SessionSummaryDTO `json:"session"`
	Answers []AnswerView             `json:"answers"`
}

// Project joins the session's exam data against a single batch question fetch.
func (p *ResultProjector) Project(session *models.GameSession, game *models.Game) (*Result, error) {
	ids := make([]uint, 0, len(session.ExamData))
	seen := make(map[uint]bool, len(session.ExamData))
	for _, record := range session.ExamData {
		if !seen[record.QuestionID] {
			seen[record.QuestionID] = true
			ids = append(ids, record.QuestionID)
		}
	}

	byID, err := p.repo.GetQuestionsByIDs(ids)
	if err != nil {
		return nil, err
	}

	answers := make([]AnswerView, 0, len(session.ExamData))
	for _, record := range session.ExamData {
		view := AnswerView{Answer: record}
		if question, ok := byID[record.QuestionID]; ok {
			dto := question.ToDTO(true)
			view.Question = &dto
		}
		answers = append(answers, view)
	}

	return &Result{
		Session: summarize(session, game),
		Answers: answers,
	}, nil
}

func summarize(session *models.GameSession, game *models.Game) models.SessionSummaryDTO {
	summary := models.SessionSummaryDTO{
		ID:                session.ID,
		GameID:            session.GameID,
		Status:            session.Status,
		Score:             session.Score,
		MaxScore:          MaxScore(game),
		CorrectAnswers:    session.CorrectAnswers,
		IncorrectAnswers:  session.IncorrectAnswers,
		QuestionsAnswered: session.QuestionsAnswered,
		TotalTimeTaken:    session.TotalTimeTaken,
		EndReason:         session.EndReason,
		StartedAt:         session.StartedAt.Format(time.RFC3339),
	}
	if session.EndedAt != nil {
		summary.EndedAt = session.EndedAt.Format(time.RFC3339)
	}
	return summary
}
