package service

import (
	"cbt_backend/internal/model"
	"cbt_backend/internal/util"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeQuestionSource serves a fixed bank out of memory, applying the same
// scope and validity-window semantics as the real repository.
type fakeQuestionSource struct {
	questions map[uint]model.Question
}

func newFakeQuestionSource(questions ...model.Question) *fakeQuestionSource {
	f := &fakeQuestionSource{questions: make(map[uint]model.Question)}
	for _, q := range questions {
		f.questions[q.ID] = q
	}
	return f
}

func matchScope(q model.Question, scope model.PoolScope) bool {
	if q.PaperID != scope.PaperID {
		return false
	}
	if scope.SectionID != nil && (q.SectionID == nil || *q.SectionID != *scope.SectionID) {
		return false
	}
	if scope.SubsectionID != nil && (q.SubsectionID == nil || *q.SubsectionID != *scope.SubsectionID) {
		return false
	}
	return true
}

func (f *fakeQuestionSource) sortedIDs() []uint {
	ids := make([]uint, 0, len(f.questions))
	for id := range f.questions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *fakeQuestionSource) EligibleIDs(scope model.PoolScope, now time.Time) ([]uint, error) {
	var out []uint
	for _, id := range f.sortedIDs() {
		q := f.questions[id]
		if matchScope(q, scope) && q.EligibleAt(now) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeQuestionSource) CountInScope(scope model.PoolScope) (int64, error) {
	var count int64
	for _, q := range f.questions {
		if matchScope(q, scope) {
			count++
		}
	}
	return count, nil
}

func (f *fakeQuestionSource) EligibleIDsByTier(scopes []model.PoolScope, tier model.DifficultyTier, now time.Time) ([]uint, error) {
	var out []uint
	for _, id := range f.sortedIDs() {
		q := f.questions[id]
		if q.Difficulty != tier || !q.EligibleAt(now) {
			continue
		}
		for _, scope := range scopes {
			if matchScope(q, scope) {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeQuestionSource) FindByID(id uint) (*model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &q, nil
}

func (f *fakeQuestionSource) FindByIDs(ids []uint) ([]model.Question, error) {
	var out []model.Question
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// bankQuestion builds a valid four-option question for test banks.
func bankQuestion(id, paperID uint, sectionID *uint, tier model.DifficultyTier) model.Question {
	return model.Question{
		BaseModel:          model.BaseModel{ID: id},
		PaperID:            paperID,
		SectionID:          sectionID,
		Text:               "question",
		Difficulty:         tier,
		CorrectOptionIndex: 0,
		ValidFrom:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:         time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
		Options: []model.QuestionOption{
			{OptionOrder: 0, Text: "a"},
			{OptionOrder: 1, Text: "b"},
			{OptionOrder: 2, Text: "c"},
			{OptionOrder: 3, Text: "d"},
		},
	}
}

func uintPtr(v uint) *uint { return &v }

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestResolveReturnsEligibleIDs(t *testing.T) {
	pool := NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, uintPtr(10), model.TierMedium),
		bankQuestion(2, 1, uintPtr(10), model.TierMedium),
		bankQuestion(3, 1, uintPtr(11), model.TierMedium),
	))

	ids, err := pool.Resolve(model.PoolScope{PaperID: 1, SectionID: uintPtr(10)}, testNow, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, ids)
}

func TestResolveExcludesQuestionsOutsideValidityWindow(t *testing.T) {
	expired := bankQuestion(2, 1, uintPtr(10), model.TierMedium)
	expired.ValidUntil = testNow.Add(-time.Hour)
	notYet := bankQuestion(3, 1, uintPtr(10), model.TierMedium)
	notYet.ValidFrom = testNow.Add(time.Hour)

	pool := NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, uintPtr(10), model.TierMedium),
		expired,
		notYet,
	))

	ids, err := pool.Resolve(model.PoolScope{PaperID: 1, SectionID: uintPtr(10)}, testNow, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)
}

func TestResolveInsufficientPoolDiagnostics(t *testing.T) {
	expired := bankQuestion(4, 1, uintPtr(10), model.TierMedium)
	expired.ValidUntil = testNow.Add(-time.Hour)

	pool := NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, uintPtr(10), model.TierMedium),
		bankQuestion(2, 1, uintPtr(10), model.TierMedium),
		bankQuestion(3, 1, uintPtr(10), model.TierMedium),
		expired,
	))

	_, err := pool.Resolve(model.PoolScope{PaperID: 1, SectionID: uintPtr(10)}, testNow, 10, 7)
	var poolErr *util.InsufficientPoolError
	require.True(t, errors.As(err, &poolErr))
	assert.Equal(t, uint(7), poolErr.SectionID)
	assert.Equal(t, 10, poolErr.Requested)
	assert.Equal(t, 4, poolErr.TotalInScope)
	assert.Equal(t, 3, poolErr.Eligible)
}

func TestResolveTierExcludesPresented(t *testing.T) {
	pool := NewPoolService(newFakeQuestionSource(
		bankQuestion(1, 1, nil, model.TierEasy),
		bankQuestion(2, 1, nil, model.TierEasy),
		bankQuestion(3, 1, nil, model.TierHard),
	))

	ids, err := pool.ResolveTier(
		[]model.PoolScope{{PaperID: 1}},
		model.TierEasy,
		map[uint]bool{1: true},
		testNow,
	)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, ids)
}
