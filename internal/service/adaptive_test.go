package service

import (
	"cbt_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustTier(t *testing.T) {
	cases := []struct {
		name    string
		current model.DifficultyTier
		correct bool
		want    model.DifficultyTier
	}{
		{"medium up on correct", model.TierMedium, true, model.TierHard},
		{"medium down on incorrect", model.TierMedium, false, model.TierEasy},
		{"hard clamps at hard", model.TierHard, true, model.TierHard},
		{"easy clamps at easy", model.TierEasy, false, model.TierEasy},
		{"hard down on incorrect", model.TierHard, false, model.TierMedium},
		{"easy up on correct", model.TierEasy, true, model.TierMedium},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AdjustTier(tc.current, tc.correct))
		})
	}
}

func adaptiveAttempt(tier model.DifficultyTier, max int) *model.TestAttempt {
	return &model.TestAttempt{
		Mode:              model.ModeAdaptive,
		Status:            model.StatusInProgress,
		MaxQuestions:      max,
		CurrentDifficulty: tier,
	}
}

func TestNextStopsAtQuestionCap(t *testing.T) {
	selector := NewAdaptiveSelector(NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, nil, model.TierMedium),
		bankQuestion(2, 1, nil, model.TierMedium),
	)))

	presented := map[uint]bool{1: true, 2: true}
	res, err := selector.Next(adaptiveAttempt(model.TierMedium, 2), []model.PoolScope{{PaperID: 1}}, presented, testNow)
	require.NoError(t, err)
	assert.True(t, res.Complete)
}

func TestNextPicksFromCurrentTier(t *testing.T) {
	selector := NewAdaptiveSelector(NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, nil, model.TierEasy),
		bankQuestion(2, 1, nil, model.TierMedium),
		bankQuestion(3, 1, nil, model.TierHard),
	)))

	res, err := selector.Next(adaptiveAttempt(model.TierHard, 10), []model.PoolScope{{PaperID: 1}}, nil, testNow)
	require.NoError(t, err)
	require.False(t, res.Complete)
	assert.Equal(t, uint(3), res.QuestionID)
	assert.Equal(t, model.TierHard, res.Tier)
}

func TestNextFallsBackWhenTierExhausted(t *testing.T) {
	// No hard questions left: a hard-tier attempt falls back to medium.
	selector := NewAdaptiveSelector(NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, nil, model.TierEasy),
		bankQuestion(2, 1, nil, model.TierMedium),
		bankQuestion(3, 1, nil, model.TierHard),
	)))

	presented := map[uint]bool{3: true}
	res, err := selector.Next(adaptiveAttempt(model.TierHard, 10), []model.PoolScope{{PaperID: 1}}, presented, testNow)
	require.NoError(t, err)
	require.False(t, res.Complete)
	assert.Equal(t, uint(2), res.QuestionID)
	assert.Equal(t, model.TierMedium, res.Tier)
}

func TestNextMediumPrefersEasierBeforeHarder(t *testing.T) {
	selector := NewAdaptiveSelector(NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, nil, model.TierEasy),
		bankQuestion(3, 1, nil, model.TierHard),
	)))

	res, err := selector.Next(adaptiveAttempt(model.TierMedium, 10), []model.PoolScope{{PaperID: 1}}, nil, testNow)
	require.NoError(t, err)
	require.False(t, res.Complete)
	assert.Equal(t, uint(1), res.QuestionID)
	assert.Equal(t, model.TierEasy, res.Tier)
}

func TestNextCompletesEarlyWhenAllTiersExhausted(t *testing.T) {
	selector := NewAdaptiveSelector(NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, nil, model.TierEasy),
		bankQuestion(2, 1, nil, model.TierMedium),
	)))

	presented := map[uint]bool{1: true, 2: true}
	res, err := selector.Next(adaptiveAttempt(model.TierMedium, 10), []model.PoolScope{{PaperID: 1}}, presented, testNow)
	require.NoError(t, err)
	assert.True(t, res.Complete)
}

func TestNextNeverRepeatsPresentedQuestions(t *testing.T) {
	selector := NewAdaptiveSelector(NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, nil, model.TierMedium),
		bankQuestion(2, 1, nil, model.TierMedium),
	)))

	presented := map[uint]bool{1: true}
	for i := 0; i < 20; i++ {
		res, err := selector.Next(adaptiveAttempt(model.TierMedium, 10), []model.PoolScope{{PaperID: 1}}, presented, testNow)
		require.NoError(t, err)
		require.False(t, res.Complete)
		assert.Equal(t, uint(2), res.QuestionID)
	}
}
