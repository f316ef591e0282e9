package service

import (
	"cbt_backend/internal/model"
	"cbt_backend/internal/util"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleTemplateDrawsDistinctQuestions(t *testing.T) {
	var questions []model.Question
	for id := uint(1); id <= 10; id++ {
		questions = append(questions, bankQuestion(id, 1, uintPtr(10), model.TierMedium))
	}
	sampler := NewSampler(NewPoolService(newFakeQuestionSource(questions...)))

	sections := []model.TestTemplateSection{
		{BaseModel: model.BaseModel{ID: 1}, PaperID: 1, SectionID: uintPtr(10), QuestionCount: 5},
	}

	sampled, err := sampler.SampleTemplate(sections, testNow)
	require.NoError(t, err)
	require.Len(t, sampled, 5)

	seen := make(map[uint]bool)
	for _, sq := range sampled {
		assert.False(t, seen[sq.QuestionID], "question %d drawn twice", sq.QuestionID)
		seen[sq.QuestionID] = true
		assert.GreaterOrEqual(t, sq.QuestionID, uint(1))
		assert.LessOrEqual(t, sq.QuestionID, uint(10))
	}
}

func TestSampleTemplatePreservesSectionOrder(t *testing.T) {
	sampler := NewSampler(NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, uintPtr(10), model.TierMedium),
		bankQuestion(2, 1, uintPtr(10), model.TierMedium),
		bankQuestion(3, 1, uintPtr(11), model.TierMedium),
		bankQuestion(4, 1, uintPtr(11), model.TierMedium),
	)))

	sections := []model.TestTemplateSection{
		{BaseModel: model.BaseModel{ID: 1}, PaperID: 1, SectionID: uintPtr(10), QuestionCount: 2},
		{BaseModel: model.BaseModel{ID: 2}, PaperID: 1, SectionID: uintPtr(11), QuestionCount: 2},
	}

	sampled, err := sampler.SampleTemplate(sections, testNow)
	require.NoError(t, err)
	require.Len(t, sampled, 4)

	assert.Equal(t, uint(1), sampled[0].SectionID)
	assert.Equal(t, uint(1), sampled[1].SectionID)
	assert.Equal(t, uint(2), sampled[2].SectionID)
	assert.Equal(t, uint(2), sampled[3].SectionID)
}

func TestSampleTemplateFailsWholeDrawOnShortSection(t *testing.T) {
	// First section can be satisfied, second cannot. The whole draw fails;
	// there is no partial batch.
	sampler := NewSampler(NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, uintPtr(10), model.TierMedium),
		bankQuestion(2, 1, uintPtr(10), model.TierMedium),
		bankQuestion(3, 1, uintPtr(11), model.TierMedium),
	)))

	sections := []model.TestTemplateSection{
		{BaseModel: model.BaseModel{ID: 1}, PaperID: 1, SectionID: uintPtr(10), QuestionCount: 2},
		{BaseModel: model.BaseModel{ID: 2}, PaperID: 1, SectionID: uintPtr(11), QuestionCount: 3},
	}

	sampled, err := sampler.SampleTemplate(sections, testNow)
	assert.Nil(t, sampled)

	var poolErr *util.InsufficientPoolError
	require.True(t, errors.As(err, &poolErr))
	assert.Equal(t, uint(2), poolErr.SectionID)
	assert.Equal(t, 3, poolErr.Requested)
	assert.Equal(t, 1, poolErr.Eligible)
}
