package game

import "quiz-arena/internal/models"

// PointsFor maps a difficulty tier to its point value. Unknown tiers are worth
// nothing rather than being an error; scoring must be total over its input.
func PointsFor(difficulty models.Difficulty) int {
	switch difficulty {
	case models.DifficultyEasy:
		return 3
	case models.DifficultyMedium:
		return 5
	case models.DifficultyHard:
		return 8
	default:
		return 0
	}
}

// MaxScore is the theoretical best score for a game's configured tier quotas.
// The result screen uses it for percentage coloring, so it has to track the
// configuration rather than assume the shipped 10/6/5 layout.
func MaxScore(g *models.Game) int {
	total := 0
	for tier, count := range g.RequiredCounts() {
		total += count * PointsFor(tier)
	}
	return total
}

// AggregateScore sums the points earned across an answer log.
func AggregateScore(log models.AnswerLog) int {
	total := 0
	for _, record := range log {
		total += record.PointsEarned
	}
	return total
}
