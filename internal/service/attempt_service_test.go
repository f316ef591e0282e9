package service

import (
	"cbt_backend/internal/model"
	"cbt_backend/internal/util"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTemplateSource struct {
	templates map[uint]*model.TestTemplate
}

func (f *fakeTemplateSource) FindByID(id uint) (*model.TestTemplate, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tpl, nil
}

type fakeAnswerStore struct {
	rows []model.TestAnswer
	seq  int
}

func (f *fakeAnswerStore) Create(a *model.TestAnswer) error {
	for _, row := range f.rows {
		if row.AttemptID == a.AttemptID && row.QuestionID == a.QuestionID {
			return fmt.Errorf("duplicate answer row for attempt %s question %d", a.AttemptID, a.QuestionID)
		}
	}
	if a.ID == "" {
		f.seq++
		a.ID = fmt.Sprintf("answer-%d", f.seq)
	}
	f.rows = append(f.rows, *a)
	return nil
}

func (f *fakeAnswerStore) Save(a *model.TestAnswer) error {
	for i := range f.rows {
		if f.rows[i].AttemptID == a.AttemptID && f.rows[i].QuestionID == a.QuestionID {
			f.rows[i] = *a
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeAnswerStore) FindByAttempt(attemptID string) ([]model.TestAnswer, error) {
	var out []model.TestAnswer
	for _, row := range f.rows {
		if row.AttemptID == attemptID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PresentedOrder < out[j].PresentedOrder })
	return out, nil
}

func (f *fakeAnswerStore) FindByAttemptAndQuestion(attemptID string, questionID uint) (*model.TestAnswer, error) {
	for _, row := range f.rows {
		if row.AttemptID == attemptID && row.QuestionID == questionID {
			found := row
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeAttemptStore struct {
	attempts map[string]model.TestAttempt
	answers  *fakeAnswerStore
	seq      int
}

func (f *fakeAttemptStore) Create(attempt *model.TestAttempt, answers []model.TestAnswer) error {
	if attempt.ID == "" {
		f.seq++
		attempt.ID = fmt.Sprintf("attempt-%d", f.seq)
	}
	f.attempts[attempt.ID] = *attempt
	for i := range answers {
		answers[i].AttemptID = attempt.ID
		if err := f.answers.Create(&answers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAttemptStore) FindByID(id string) (*model.TestAttempt, error) {
	a, ok := f.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := a
	return &found, nil
}

func (f *fakeAttemptStore) Save(a *model.TestAttempt) error {
	if _, ok := f.attempts[a.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.attempts[a.ID] = *a
	return nil
}

func (f *fakeAttemptStore) Finalize(attemptID string, status model.AttemptStatus, completedAt time.Time, score float64, answers []model.TestAnswer) (bool, error) {
	a, ok := f.attempts[attemptID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if a.Status != model.StatusInProgress {
		return false, nil
	}
	a.Status = status
	a.CompletedAt = &completedAt
	a.ScorePercent = &score
	f.attempts[attemptID] = a

	for _, scored := range answers {
		for i := range f.answers.rows {
			row := &f.answers.rows[i]
			if row.AttemptID == attemptID && row.QuestionID == scored.QuestionID {
				row.IsCorrect = scored.IsCorrect
				row.MarksAwarded = scored.MarksAwarded
			}
		}
	}
	return true, nil
}

func (f *fakeAttemptStore) FindOverdue(now time.Time) ([]model.TestAttempt, error) {
	var out []model.TestAttempt
	for _, a := range f.attempts {
		if a.Status == model.StatusInProgress && a.Expired(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) ListByUser(userID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	var out []model.TestAttempt
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

type engineFixture struct {
	svc      *AttemptService
	attempts *fakeAttemptStore
	answers  *fakeAnswerStore
	clock    time.Time
}

func (f *engineFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func newEngineFixture(questions []model.Question, templates ...*model.TestTemplate) *engineFixture {
	answers := &fakeAnswerStore{}
	attempts := &fakeAttemptStore{attempts: make(map[string]model.TestAttempt), answers: answers}
	tplSource := &fakeTemplateSource{templates: make(map[uint]*model.TestTemplate)}
	for _, tpl := range templates {
		tplSource.templates[tpl.ID] = tpl
	}

	f := &engineFixture{
		svc:      NewAttemptService(tplSource, newFakeQuestionSource(questions...), attempts, answers),
		attempts: attempts,
		answers:  answers,
		clock:    testNow,
	}
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func sectionBank(count int) []model.Question {
	var questions []model.Question
	for id := uint(1); id <= uint(count); id++ {
		questions = append(questions, bankQuestion(id, 1, uintPtr(10), model.TierMedium))
	}
	return questions
}

func standardTemplate(questionCount int) *model.TestTemplate {
	return &model.TestTemplate{
		BaseModel: model.BaseModel{ID: 1},
		Name:      "standard",
		Sections: []model.TestTemplateSection{
			{BaseModel: model.BaseModel{ID: 1}, TemplateID: 1, PaperID: 1, SectionID: uintPtr(10), QuestionCount: questionCount},
		},
	}
}

const candidateID = uint(42)

func startStandard(t *testing.T, f *engineFixture) *StartAttemptResponse {
	t.Helper()
	resp, err := f.svc.StartAttempt(candidateID, StartAttemptRequest{
		TemplateID:      1,
		Mode:            model.ModeStandard,
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	return resp
}

func TestStartStandardCreatesPlaceholderRows(t *testing.T) {
	f := newEngineFixture(sectionBank(5), standardTemplate(3))

	resp := startStandard(t, f)

	assert.Equal(t, model.ModeStandard, resp.Mode)
	require.Len(t, resp.Questions, 3)

	rows, err := f.answers.FindByAttempt(resp.AttemptID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i+1, row.PresentedOrder)
		assert.Nil(t, row.SelectedOptionIndex)
		assert.Nil(t, row.IsCorrect)
		assert.Equal(t, resp.Questions[i].ID, row.QuestionID)
	}

	attempt, err := f.attempts.FindByID(resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, attempt.Status)
	assert.Equal(t, candidateID, attempt.UserID)
}

func TestStartStandardInsufficientPoolPersistsNothing(t *testing.T) {
	f := newEngineFixture(sectionBank(2), standardTemplate(5))

	_, err := f.svc.StartAttempt(candidateID, StartAttemptRequest{
		TemplateID:      1,
		Mode:            model.ModeStandard,
		DurationMinutes: 30,
	})

	var poolErr *util.InsufficientPoolError
	require.True(t, errors.As(err, &poolErr))
	assert.Equal(t, 5, poolErr.Requested)
	assert.Equal(t, 2, poolErr.Eligible)

	assert.Empty(t, f.attempts.attempts)
	assert.Empty(t, f.answers.rows)
}

func TestSubmitAnswerOverwritesWithoutDuplicating(t *testing.T) {
	f := newEngineFixture(sectionBank(3), standardTemplate(3))
	resp := startStandard(t, f)
	questionID := resp.Questions[0].ID

	_, err := f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          questionID,
		SelectedOptionIndex: 1,
		TimeTakenSeconds:    20,
	})
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          questionID,
		SelectedOptionIndex: 2,
		TimeTakenSeconds:    35,
	})
	require.NoError(t, err)

	rows, err := f.answers.FindByAttempt(resp.AttemptID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	row, err := f.answers.FindByAttemptAndQuestion(resp.AttemptID, questionID)
	require.NoError(t, err)
	require.NotNil(t, row.SelectedOptionIndex)
	assert.Equal(t, 2, *row.SelectedOptionIndex)
	assert.Equal(t, 35, row.TimeTakenSeconds)
}

func TestSubmitAnswerRejectsUnpresentedQuestion(t *testing.T) {
	f := newEngineFixture(sectionBank(5), standardTemplate(3))
	resp := startStandard(t, f)

	presented := make(map[uint]bool)
	for _, q := range resp.Questions {
		presented[q.ID] = true
	}
	var outside uint
	for id := uint(1); id <= 5; id++ {
		if !presented[id] {
			outside = id
			break
		}
	}
	require.NotZero(t, outside)

	_, err := f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          outside,
		SelectedOptionIndex: 0,
	})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestSubmitAnswerValidatesInput(t *testing.T) {
	f := newEngineFixture(sectionBank(3), standardTemplate(3))
	resp := startStandard(t, f)
	questionID := resp.Questions[0].ID

	var validation *util.ValidationError

	_, err := f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          questionID,
		SelectedOptionIndex: 4,
	})
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "selectedOptionIndex", validation.Field)

	_, err = f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          questionID,
		SelectedOptionIndex: 0,
		TimeTakenSeconds:    -1,
	})
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "timeTakenSeconds", validation.Field)
}

func TestSubmitAnswerRejectsForeignAttempt(t *testing.T) {
	f := newEngineFixture(sectionBank(3), standardTemplate(3))
	resp := startStandard(t, f)

	_, err := f.svc.SubmitAnswer(candidateID+1, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          resp.Questions[0].ID,
		SelectedOptionIndex: 0,
	})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestToggleReviewFlips(t *testing.T) {
	f := newEngineFixture(sectionBank(3), standardTemplate(3))
	resp := startStandard(t, f)
	questionID := resp.Questions[1].ID

	marked, err := f.svc.ToggleReview(candidateID, resp.AttemptID, questionID)
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = f.svc.ToggleReview(candidateID, resp.AttemptID, questionID)
	require.NoError(t, err)
	assert.False(t, marked)
}

func TestFinishScoresAttemptedOnly(t *testing.T) {
	f := newEngineFixture(sectionBank(3), standardTemplate(3))
	resp := startStandard(t, f)

	// Answer one of three correctly, leave the rest unanswered.
	_, err := f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          resp.Questions[0].ID,
		SelectedOptionIndex: 0,
	})
	require.NoError(t, err)

	score, err := f.svc.Finish(candidateID, resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, score.Status)
	assert.Equal(t, 1, score.Attempted)
	assert.Equal(t, 1, score.Correct)
	assert.InDelta(t, 100.0, score.ScorePercent, 1e-9)
}

func TestFinishIsIdempotent(t *testing.T) {
	f := newEngineFixture(sectionBank(2), standardTemplate(2))
	resp := startStandard(t, f)

	_, err := f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          resp.Questions[0].ID,
		SelectedOptionIndex: 3,
	})
	require.NoError(t, err)

	first, err := f.svc.Finish(candidateID, resp.AttemptID)
	require.NoError(t, err)

	rowsAfterFirst, err := f.answers.FindByAttempt(resp.AttemptID)
	require.NoError(t, err)

	second, err := f.svc.Finish(candidateID, resp.AttemptID)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Attempted, second.Attempted)
	assert.Equal(t, first.Correct, second.Correct)
	assert.Equal(t, first.ScorePercent, second.ScorePercent)
	assert.Equal(t, first.CompletedAt, second.CompletedAt)

	rowsAfterSecond, err := f.answers.FindByAttempt(resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, rowsAfterFirst, rowsAfterSecond)
}

func TestAbandonScoresAndBlocksRepeat(t *testing.T) {
	f := newEngineFixture(sectionBank(2), standardTemplate(2))
	resp := startStandard(t, f)

	_, err := f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          resp.Questions[0].ID,
		SelectedOptionIndex: 0,
	})
	require.NoError(t, err)

	score, err := f.svc.Abandon(candidateID, resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAbandoned, score.Status)
	assert.InDelta(t, 100.0, score.ScorePercent, 1e-9)

	_, err = f.svc.Abandon(candidateID, resp.AttemptID)
	assert.ErrorIs(t, err, util.ErrStateConflict)

	// Finish after abandon returns the stored abandoned score unchanged.
	stored, err := f.svc.Finish(candidateID, resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAbandoned, stored.Status)
	assert.Equal(t, score.ScorePercent, stored.ScorePercent)
}

func TestExpiredAttemptIsFinishedOnTouch(t *testing.T) {
	f := newEngineFixture(sectionBank(2), standardTemplate(2))
	resp := startStandard(t, f)

	_, err := f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          resp.Questions[0].ID,
		SelectedOptionIndex: 0,
	})
	require.NoError(t, err)

	f.advance(31 * time.Minute)

	_, err = f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          resp.Questions[1].ID,
		SelectedOptionIndex: 0,
	})
	assert.ErrorIs(t, err, util.ErrStateConflict)

	attempt, err := f.attempts.FindByID(resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, attempt.Status)
	require.NotNil(t, attempt.ScorePercent)
	assert.InDelta(t, 100.0, *attempt.ScorePercent, 1e-9)
}

func TestExpireOverdueSweep(t *testing.T) {
	f := newEngineFixture(sectionBank(2), standardTemplate(2))
	resp := startStandard(t, f)

	finished, err := f.svc.ExpireOverdue()
	require.NoError(t, err)
	assert.Zero(t, finished)

	f.advance(31 * time.Minute)

	finished, err = f.svc.ExpireOverdue()
	require.NoError(t, err)
	assert.Equal(t, 1, finished)

	attempt, err := f.attempts.FindByID(resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, attempt.Status)
}

func adaptiveBank() []model.Question {
	return []model.Question{
		bankQuestion(1, 1, uintPtr(10), model.TierEasy),
		bankQuestion(2, 1, uintPtr(10), model.TierMedium),
		bankQuestion(3, 1, uintPtr(10), model.TierHard),
		bankQuestion(4, 1, uintPtr(10), model.TierHard),
	}
}

func TestAdaptiveAttemptFlow(t *testing.T) {
	f := newEngineFixture(adaptiveBank(), standardTemplate(1))

	resp, err := f.svc.StartAttempt(candidateID, StartAttemptRequest{
		TemplateID:      1,
		Mode:            model.ModeAdaptive,
		DurationMinutes: 30,
		MaxQuestions:    3,
	})
	require.NoError(t, err)
	require.Len(t, resp.Questions, 1)

	// Starts at the medium tier; only question 2 is medium.
	assert.Equal(t, uint(2), resp.Questions[0].ID)

	// Correct answer moves the tier up to hard.
	next, err := f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          2,
		SelectedOptionIndex: 0,
	})
	require.NoError(t, err)
	require.Equal(t, SubmitStatusNext, next.Status)
	require.NotNil(t, next.NextQuestion)
	assert.Equal(t, model.TierHard, next.NextQuestion.Difficulty)

	attempt, err := f.attempts.FindByID(resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.TierHard, attempt.CurrentDifficulty)

	// Incorrect answer moves back down to medium; medium is exhausted so the
	// selector falls back.
	second := next.NextQuestion.ID
	next, err = f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          second,
		SelectedOptionIndex: 1,
	})
	require.NoError(t, err)
	require.Equal(t, SubmitStatusNext, next.Status)
	require.NotNil(t, next.NextQuestion)

	attempt, err = f.attempts.FindByID(resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, model.TierMedium, attempt.CurrentDifficulty)

	// Third answer reaches the cap: the attempt is complete.
	next, err = f.svc.SubmitAnswer(candidateID, resp.AttemptID, SubmitAnswerRequest{
		QuestionID:          next.NextQuestion.ID,
		SelectedOptionIndex: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, SubmitStatusComplete, next.Status)
	assert.Nil(t, next.NextQuestion)

	score, err := f.svc.Finish(candidateID, resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, 3, score.Attempted)
	assert.Equal(t, 2, score.Correct)
	assert.InDelta(t, 100.0*2.0/3.0, score.ScorePercent, 1e-9)
}

func TestStartAdaptiveEmptyPoolPersistsNothing(t *testing.T) {
	f := newEngineFixture(nil, standardTemplate(1))

	_, err := f.svc.StartAttempt(candidateID, StartAttemptRequest{
		TemplateID:      1,
		Mode:            model.ModeAdaptive,
		DurationMinutes: 30,
		MaxQuestions:    5,
	})

	var poolErr *util.InsufficientPoolError
	require.True(t, errors.As(err, &poolErr))
	assert.Zero(t, poolErr.TotalInScope)
	assert.Empty(t, f.attempts.attempts)
	assert.Empty(t, f.answers.rows)
}

func TestGetDetailEnforcesOwnership(t *testing.T) {
	f := newEngineFixture(sectionBank(2), standardTemplate(2))
	resp := startStandard(t, f)

	_, err := f.svc.GetDetail(candidateID+1, model.Student, resp.AttemptID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	detail, err := f.svc.GetDetail(candidateID+1, model.Admin, resp.AttemptID)
	require.NoError(t, err)
	assert.Len(t, detail.Answers, 2)

	detail, err = f.svc.GetDetail(candidateID, model.Student, resp.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, resp.AttemptID, detail.Attempt.ID)
}
