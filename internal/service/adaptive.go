package service

import (
	"cbt_backend/internal/model"
	"time"
)

// AdaptiveSelector chooses the next question for adaptive-mode attempts, one
// at a time, steering difficulty from running performance. It never mutates
// attempt state itself: difficulty adjustment happens after an answer is
// recorded, selection happens before the next question is presented, and the
// two never interleave.
type AdaptiveSelector struct {
	Pool *PoolService
}

func NewAdaptiveSelector(pool *PoolService) *AdaptiveSelector {
	return &AdaptiveSelector{Pool: pool}
}

// AdaptiveResult is the outcome of one selection step. Complete means the
// attempt has no further questions, either because the cap was reached or
// because every tier's pool is exhausted; the caller must finish the attempt.
type AdaptiveResult struct {
	Complete   bool
	QuestionID uint
	Tier       model.DifficultyTier
}

// Next picks the next question for the attempt. Presented questions are never
// repeated. When the target tier has no remaining eligible questions it falls
// back to the nearest tier, same-or-easier before harder.
func (s *AdaptiveSelector) Next(attempt *model.TestAttempt, scopes []model.PoolScope, presented map[uint]bool, now time.Time) (*AdaptiveResult, error) {
	if attempt.MaxQuestions > 0 && len(presented) >= attempt.MaxQuestions {
		return &AdaptiveResult{Complete: true}, nil
	}

	for _, tier := range fallbackOrder(attempt.CurrentDifficulty) {
		ids, err := s.Pool.ResolveTier(scopes, tier, presented, now)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			continue
		}
		return &AdaptiveResult{QuestionID: pickOne(ids), Tier: tier}, nil
	}

	// Every tier exhausted: the attempt ends early with fewer questions than
	// the cap. Expected behavior, not an error.
	return &AdaptiveResult{Complete: true}, nil
}

// AdjustTier moves one tier harder after a correct answer and one tier easier
// after an incorrect one, clamped at the boundaries.
func AdjustTier(current model.DifficultyTier, correct bool) model.DifficultyTier {
	if !current.Valid() {
		current = model.TierMedium
	}
	if correct {
		return current.Harder()
	}
	return current.Easier()
}

// fallbackOrder lists the tiers to probe for the given target: the target
// itself, then easier tiers nearest first, then harder tiers nearest first.
func fallbackOrder(target model.DifficultyTier) []model.DifficultyTier {
	switch target {
	case model.TierEasy:
		return []model.DifficultyTier{model.TierEasy, model.TierMedium, model.TierHard}
	case model.TierHard:
		return []model.DifficultyTier{model.TierHard, model.TierMedium, model.TierEasy}
	default:
		return []model.DifficultyTier{model.TierMedium, model.TierEasy, model.TierHard}
	}
}
