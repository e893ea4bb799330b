package game

import (
	"fmt"
	"log"
	"math"

	"quiz-arena/internal/models"
)

// RecomputeStats rebuilds a game's display aggregate from scratch over all of its
// completed sessions and persists it onto the game row. Full recompute per finish
// is O(sessions); fine at current scale.
func (e *Engine) RecomputeStats(game *models.Game) error {
	completed, err := e.repo.ListCompletedSessions(game.ID)
	if err != nil {
		return err
	}

	stats := ComputeStats(completed, func() (int64, int64, error) {
		all, err := e.repo.CountSessions(game.ID)
		if err != nil {
			return 0, 0, err
		}
		players, err := e.repo.CountDistinctPlayers(game.ID)
		if err != nil {
			return 0, 0, err
		}
		return all, players, nil
	})

	if err := e.repo.UpdateGameStats(game.ID, stats); err != nil {
		return err
	}
	game.Stats = stats

	if e.cache != nil {
		if err := e.cache.SetGame(game); err != nil {
			log.Printf("Error refreshing cached game %s after stats update: %v", game.Slug, err)
		}
	}
	return nil
}

// ComputeStats is the pure aggregation over completed sessions. counters supplies
// (all sessions, distinct players); it is only consulted when there is something
// to aggregate.
func ComputeStats(completed []models.GameSession, counters func() (int64, int64, error)) models.GameStats {
	totalSessions := len(completed)
	if totalSessions == 0 {
		return models.ZeroStats()
	}

	scoreSum := 0
	timeSum := 0
	answeredSum := 0
	for _, session := range completed {
		scoreSum += session.Score
		answeredSum += session.QuestionsAnswered
		for _, record := range session.ExamData {
			timeSum += record.TimeTaken
		}
	}

	stats := models.GameStats{
		AverageScore: round1(float64(scoreSum) / float64(totalSessions)),
	}
	if answeredSum > 0 {
		stats.AverageTimePerQuestion = round1(float64(timeSum) / float64(answeredSum))
	}

	allSessions, players, err := counters()
	if err != nil {
		log.Printf("Warning: session counters unavailable, stats partially zeroed: %v", err)
		stats.CompletionRate = "0%"
		return stats
	}
	stats.TotalPlayers = int(players)
	if allSessions > 0 {
		rate := math.Round(float64(totalSessions) / float64(allSessions) * 100)
		stats.CompletionRate = fmt.Sprintf("%d%%", int(rate))
	} else {
		stats.CompletionRate = "0%"
	}
	return stats
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
