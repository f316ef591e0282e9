package service

import (
	"cbt_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func scoringBank() map[uint]model.Question {
	bank := make(map[uint]model.Question)
	for id := uint(1); id <= 4; id++ {
		q := bankQuestion(id, 1, nil, model.TierMedium)
		bank[id] = q
	}
	return bank
}

func TestScoreDenominatorIsAttemptedOnly(t *testing.T) {
	// Four presented, two answered (both correct). Unanswered placeholders
	// must not dilute the score: 2/2, not 2/4.
	answers := []model.TestAnswer{
		{QuestionID: 1, PresentedOrder: 1, SelectedOptionIndex: intPtr(0)},
		{QuestionID: 2, PresentedOrder: 2, SelectedOptionIndex: intPtr(0)},
		{QuestionID: 3, PresentedOrder: 3},
		{QuestionID: 4, PresentedOrder: 4},
	}

	res := Scorer{}.Score(answers, scoringBank())

	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 2, res.Correct)
	assert.InDelta(t, 100.0, res.ScorePercent, 1e-9)

	require.Nil(t, res.Answers[2].IsCorrect)
	require.Nil(t, res.Answers[2].MarksAwarded)
	require.Nil(t, res.Answers[3].IsCorrect)
	require.Nil(t, res.Answers[3].MarksAwarded)
}

func TestScoreHalfCorrect(t *testing.T) {
	answers := []model.TestAnswer{
		{QuestionID: 1, PresentedOrder: 1, SelectedOptionIndex: intPtr(0)},
		{QuestionID: 2, PresentedOrder: 2, SelectedOptionIndex: intPtr(3)},
	}

	res := Scorer{}.Score(answers, scoringBank())

	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 1, res.Correct)
	assert.InDelta(t, 50.0, res.ScorePercent, 1e-9)

	require.NotNil(t, res.Answers[1].IsCorrect)
	assert.False(t, *res.Answers[1].IsCorrect)
	require.NotNil(t, res.Answers[1].MarksAwarded)
	assert.Zero(t, *res.Answers[1].MarksAwarded)
}

func TestScoreNothingAttempted(t *testing.T) {
	answers := []model.TestAnswer{
		{QuestionID: 1, PresentedOrder: 1},
		{QuestionID: 2, PresentedOrder: 2},
	}

	res := Scorer{}.Score(answers, scoringBank())

	assert.Zero(t, res.Attempted)
	assert.Zero(t, res.Correct)
	assert.Equal(t, 0.0, res.ScorePercent)
}

func TestScoreIsDeterministic(t *testing.T) {
	answers := []model.TestAnswer{
		{QuestionID: 1, PresentedOrder: 1, SelectedOptionIndex: intPtr(0)},
		{QuestionID: 2, PresentedOrder: 2, SelectedOptionIndex: intPtr(1)},
		{QuestionID: 3, PresentedOrder: 3},
	}
	bank := scoringBank()

	first := Scorer{}.Score(answers, bank)
	second := Scorer{}.Score(first.Answers, bank)

	assert.Equal(t, first.Attempted, second.Attempted)
	assert.Equal(t, first.Correct, second.Correct)
	assert.Equal(t, first.ScorePercent, second.ScorePercent)
}
