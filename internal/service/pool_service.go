package service

import (
	"cbt_backend/internal/model"
	"cbt_backend/internal/util"
	"time"
)

// QuestionSource is the read-only view of the question bank the attempt
// engine depends on. *repository.QuestionRepository satisfies it; tests use
// in-memory fakes.
type QuestionSource interface {
	EligibleIDs(scope model.PoolScope, now time.Time) ([]uint, error)
	CountInScope(scope model.PoolScope) (int64, error)
	EligibleIDsByTier(scopes []model.PoolScope, tier model.DifficultyTier, now time.Time) ([]uint, error)
	FindByID(id uint) (*model.Question, error)
	FindByIDs(ids []uint) ([]model.Question, error)
}

// PoolService resolves eligible question pools. It is a pure read with no
// side effects; pool membership is re-evaluated for every attempt start and
// never cached, so bank edits are visible to new attempts immediately.
type PoolService struct {
	Questions QuestionSource
}

func NewPoolService(questions QuestionSource) *PoolService {
	return &PoolService{Questions: questions}
}

// Resolve returns the eligible question ids for one template section's scope.
// When the pool cannot satisfy required, the error carries the in-scope total
// alongside the eligible count so the caller can tell "no questions exist"
// from "questions exist but none are currently valid".
func (s *PoolService) Resolve(scope model.PoolScope, now time.Time, required int, sectionID uint) ([]uint, error) {
	ids, err := s.Questions.EligibleIDs(scope, now)
	if err != nil {
		return nil, err
	}
	if len(ids) < required {
		total, err := s.Questions.CountInScope(scope)
		if err != nil {
			return nil, err
		}
		return nil, &util.InsufficientPoolError{
			SectionID:    sectionID,
			Requested:    required,
			TotalInScope: int(total),
			Eligible:     len(ids),
		}
	}
	return ids, nil
}

// ResolveTier returns the eligible ids at one difficulty tier across the
// given scopes, excluding already-presented questions.
func (s *PoolService) ResolveTier(scopes []model.PoolScope, tier model.DifficultyTier, presented map[uint]bool, now time.Time) ([]uint, error) {
	ids, err := s.Questions.EligibleIDsByTier(scopes, tier, now)
	if err != nil {
		return nil, err
	}
	remaining := ids[:0:0]
	for _, id := range ids {
		if !presented[id] {
			remaining = append(remaining, id)
		}
	}
	return remaining, nil
}

// Diagnostics sums pool stats across scopes, for error reporting when an
// adaptive attempt cannot start.
func (s *PoolService) Diagnostics(scopes []model.PoolScope, now time.Time) (total, eligible int, err error) {
	for _, scope := range scopes {
		c, err := s.Questions.CountInScope(scope)
		if err != nil {
			return 0, 0, err
		}
		total += int(c)
		ids, err := s.Questions.EligibleIDs(scope, now)
		if err != nil {
			return 0, 0, err
		}
		eligible += len(ids)
	}
	return total, eligible, nil
}
