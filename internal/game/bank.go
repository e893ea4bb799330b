package game

import (
	"log"
	"math/rand"
	"time"

	"quiz-arena/internal/models"
)

// QuestionBank assembles question sets from the approved pool, one block per
// difficulty tier in fixed easy, medium, hard order. Draws are uniform without
// replacement within a tier.
type QuestionBank struct {
	repo *Repository
	rnd  *rand.Rand
}

func NewQuestionBank(repo *Repository) *QuestionBank {
	return &QuestionBank{
		repo: repo,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewQuestionBankWithRand allows a deterministic source in tests.
func NewQuestionBankWithRand(repo *Repository, rnd *rand.Rand) *QuestionBank {
	return &QuestionBank{repo: repo, rnd: rnd}
}

// SelectQuestionSet draws the per-tier quotas and concatenates the tier blocks in
// serving order. A tier shortfall degrades to serving everything available; the
// shortfall is logged and the session still starts.
func (b *QuestionBank) SelectQuestionSet(requiredCounts map[models.Difficulty]int) ([]models.Question, error) {
	var set []models.Question
	for _, tier := range models.DifficultyOrder {
		required := requiredCounts[tier]
		if required <= 0 {
			continue
		}

		pool, err := b.repo.GetApprovedQuestionsByTier(tier)
		if err != nil {
			return nil, err
		}

		if len(pool) < required {
			shortfall := &InsufficientQuestionsError{
				Tier:      string(tier),
				Required:  required,
				Available: len(pool),
			}
			log.Printf("Warning: %v, serving reduced set", shortfall)
			required = len(pool)
		}

		b.rnd.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		set = append(set, pool[:required]...)
	}
	return set, nil
}
