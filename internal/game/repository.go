package game

import (
	"errors"
	"log"
	"time"

	"quiz-arena/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetGameBySlug(slug string) (*models.Game, error) {
	var game models.Game
	err := r.db.Where("slug = ?", slug).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		log.Printf("Error getting game by slug %s: %v", slug, err)
		return nil, err
	}
	return &game, nil
}

func (r *Repository) GetGameByID(gameID uint) (*models.Game, error) {
	var game models.Game
	err := r.db.First(&game, gameID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (r *Repository) ListActiveGames() ([]models.Game, error) {
	var games []models.Game
	err := r.db.Where("is_active = ?", true).Order("name asc").Find(&games).Error
	if err != nil {
		log.Printf("Error listing active games: %v", err)
		return nil, err
	}
	return games, nil
}

// GetApprovedQuestionsByTier returns every approved question of one difficulty tier.
// The bank draws the per-session subset from this pool.
func (r *Repository) GetApprovedQuestionsByTier(tier models.Difficulty) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.Where("difficulty_level = ? AND status = ?", tier, models.QuestionApproved).
		Find(&questions).Error
	if err != nil {
		log.Printf("Error getting approved %s questions: %v", tier, err)
		return nil, err
	}
	return questions, nil
}

// GetQuestionsByIDs batch-fetches questions; soft-deleted ones simply come back
// missing, which callers must tolerate.
func (r *Repository) GetQuestionsByIDs(ids []uint) (map[uint]models.Question, error) {
	byID := make(map[uint]models.Question, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	var questions []models.Question
	err := r.db.Where("id IN ?", ids).Find(&questions).Error
	if err != nil {
		log.Printf("Error batch fetching %d questions: %v", len(ids), err)
		return nil, err
	}
	for _, q := range questions {
		byID[q.ID] = q
	}
	return byID, nil
}

// StartSession returns the in-progress session for the (client, game) pair,
// creating one when none exists. The uniq_active_session partial unique index
// allows at most one in-progress row per pair, so if two starts race the loser's
// insert fails and we return the winner's row instead.
func (r *Repository) StartSession(clientID, gameID uint, now time.Time) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("client_id = ? AND game_id = ? AND status = ?",
			clientID, gameID, models.SessionInProgress).
			First(&session).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		session = models.GameSession{
			ClientID:  clientID,
			GameID:    gameID,
			Status:    models.SessionInProgress,
			StartedAt: now,
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		var winner models.GameSession
		lookupErr := r.db.Where("client_id = ? AND game_id = ? AND status = ?",
			clientID, gameID, models.SessionInProgress).
			First(&winner).Error
		if lookupErr == nil {
			log.Printf("Concurrent start for client %d game %d, reusing session %d",
				clientID, gameID, winner.ID)
			return &winner, nil
		}
		log.Printf("Error starting session for client %d game %d: %v", clientID, gameID, err)
		return nil, err
	}
	return &session, nil
}

func (r *Repository) GetSessionByID(sessionID uint) (*models.GameSession, error) {
	var session models.GameSession
	err := r.db.First(&session, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *Repository) SaveSession(session *models.GameSession) error {
	err := r.db.Save(session).Error
	if err != nil {
		log.Printf("Error saving session %d: %v", session.ID, err)
	}
	return err
}

// FinalizeSession applies the finished state with an optimistic status guard: only
// the writer that still observes in_progress wins. Returns false when another finish
// already landed, so the caller can take the idempotent path.
func (r *Repository) FinalizeSession(session *models.GameSession) (bool, error) {
	res := r.db.Model(&models.GameSession{}).
		Where("id = ? AND status = ?", session.ID, models.SessionInProgress).
		Select("status", "score", "correct_answers", "incorrect_answers",
			"questions_answered", "time_remaining", "total_time_taken",
			"exam_data", "ended_at", "end_reason").
		Updates(session)
	if res.Error != nil {
		log.Printf("Error finalizing session %d: %v", session.ID, res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) ListCompletedSessions(gameID uint) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := r.db.Where("game_id = ? AND status = ?", gameID, models.SessionCompleted).
		Find(&sessions).Error
	if err != nil {
		log.Printf("Error listing completed sessions for game %d: %v", gameID, err)
		return nil, err
	}
	return sessions, nil
}

func (r *Repository) CountSessions(gameID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.GameSession{}).
		Where("game_id = ?", gameID).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountDistinctPlayers(gameID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.GameSession{}).
		Where("game_id = ? AND status = ?", gameID, models.SessionCompleted).
		Distinct("client_id").
		Count(&count).Error
	return count, err
}

func (r *Repository) UpdateGameStats(gameID uint, stats models.GameStats) error {
	return r.db.Model(&models.Game{}).
		Where("id = ?", gameID).
		Update("stats", stats).Error
}

// ListSessionsByClient returns a client's finished sessions, most recent first.
func (r *Repository) ListSessionsByClient(clientID uint) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := r.db.Where("client_id = ? AND status = ?", clientID, models.SessionCompleted).
		Order("started_at desc").
		Find(&sessions).Error
	if err != nil {
		log.Printf("Error listing sessions for client %d: %v", clientID, err)
		return nil, err
	}
	return sessions, nil
}
