package service

import (
	"cbt_backend/internal/model"
	"cbt_backend/internal/util"
	"errors"
	"time"

	"gorm.io/gorm"
)

// TemplateSource supplies test templates with their ordered sections.
type TemplateSource interface {
	FindByID(id uint) (*model.TestTemplate, error)
}

// AttemptStore owns TestAttempt persistence. Create and Finalize are each a
// single atomic unit against the backing store.
type AttemptStore interface {
	Create(attempt *model.TestAttempt, answers []model.TestAnswer) error
	FindByID(id string) (*model.TestAttempt, error)
	Save(a *model.TestAttempt) error
	Finalize(attemptID string, status model.AttemptStatus, completedAt time.Time, score float64, answers []model.TestAnswer) (bool, error)
	FindOverdue(now time.Time) ([]model.TestAttempt, error)
	ListByUser(userID uint, page, limit int) ([]model.TestAttempt, int64, error)
}

// AnswerStore owns TestAnswer persistence.
type AnswerStore interface {
	Create(a *model.TestAnswer) error
	Save(a *model.TestAnswer) error
	FindByAttempt(attemptID string) ([]model.TestAnswer, error)
	FindByAttemptAndQuestion(attemptID string, questionID uint) (*model.TestAnswer, error)
}

// AttemptService drives the attempt lifecycle: InProgress on start, then
// exactly one transition to Completed or Abandoned. It is the single write
// path for TestAnswer rows during an attempt.
type AttemptService struct {
	Templates TemplateSource
	Questions QuestionSource
	Attempts  AttemptStore
	Answers   AnswerStore
	Pool      *PoolService
	Sampler   *Sampler
	Adaptive  *AdaptiveSelector
	Scorer    Scorer

	now func() time.Time
}

func NewAttemptService(templates TemplateSource, questions QuestionSource, attempts AttemptStore, answers AnswerStore) *AttemptService {
	pool := NewPoolService(questions)
	return &AttemptService{
		Templates: templates,
		Questions: questions,
		Attempts:  attempts,
		Answers:   answers,
		Pool:      pool,
		Sampler:   NewSampler(pool),
		Adaptive:  NewAdaptiveSelector(pool),
		now:       time.Now,
	}
}

type StartAttemptRequest struct {
	TemplateID      uint              `json:"templateId" binding:"required"`
	Mode            model.AttemptMode `json:"mode"`
	DurationMinutes int               `json:"durationMinutes" binding:"required"`
	MaxQuestions    int               `json:"maxQuestions"`
}

// OptionView is a question option as delivered to the candidate.
type OptionView struct {
	Order int    `json:"order"`
	Text  string `json:"text"`
}

// QuestionView is a question as delivered to the candidate: no correct index,
// no explanation.
type QuestionView struct {
	ID         uint                 `json:"id"`
	Text       string               `json:"text"`
	Difficulty model.DifficultyTier `json:"difficulty"`
	Options    []OptionView         `json:"options"`
}

type StartAttemptResponse struct {
	AttemptID       string            `json:"attemptId"`
	Mode            model.AttemptMode `json:"mode"`
	StartedAt       time.Time         `json:"startedAt"`
	DurationMinutes int               `json:"durationMinutes"`
	// Standard mode: the full sampled batch. Adaptive mode: the first
	// question only.
	Questions []QuestionView `json:"questions"`
}

type SubmitAnswerRequest struct {
	QuestionID          uint `json:"questionId" binding:"required"`
	SelectedOptionIndex int  `json:"selectedOptionIndex"`
	TimeTakenSeconds    int  `json:"timeTakenSeconds"`
}

const (
	SubmitStatusOK       = "ok"
	SubmitStatusNext     = "next"
	SubmitStatusComplete = "complete"
)

type SubmitAnswerResponse struct {
	Status       string        `json:"status"`
	NextQuestion *QuestionView `json:"nextQuestion,omitempty"`
}

type FinalScore struct {
	AttemptID    string              `json:"attemptId"`
	Status       model.AttemptStatus `json:"status"`
	Attempted    int                 `json:"attempted"`
	Correct      int                 `json:"correct"`
	ScorePercent float64             `json:"scorePercent"`
	CompletedAt  time.Time           `json:"completedAt"`
}

// StartAttempt allocates the attempt, produces its question sequence (whole
// batch for standard mode, first question for adaptive) and persists the
// attempt plus its answer placeholders atomically. Nothing is persisted when
// the pool cannot satisfy the template.
func (s *AttemptService) StartAttempt(userID uint, req StartAttemptRequest) (*StartAttemptResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = model.ModeStandard
	}
	if mode != model.ModeStandard && mode != model.ModeAdaptive {
		return nil, util.Validation("mode", "must be standard or adaptive")
	}
	if req.DurationMinutes <= 0 {
		return nil, util.Validation("durationMinutes", "must be positive")
	}
	if mode == model.ModeAdaptive && req.MaxQuestions <= 0 {
		return nil, util.Validation("maxQuestions", "required for adaptive mode")
	}

	tpl, err := s.Templates.FindByID(req.TemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTemplateNotFound
		}
		return nil, err
	}
	if len(tpl.Sections) == 0 {
		return nil, util.Validation("templateId", "template has no sections")
	}

	now := s.now()
	attempt := &model.TestAttempt{
		UserID:          userID,
		TemplateID:      tpl.ID,
		Mode:            mode,
		Status:          model.StatusInProgress,
		StartedAt:       now,
		DurationMinutes: req.DurationMinutes,
	}

	if mode == model.ModeStandard {
		return s.startStandard(attempt, tpl, now)
	}
	attempt.MaxQuestions = req.MaxQuestions
	attempt.CurrentDifficulty = model.TierMedium
	return s.startAdaptive(attempt, tpl, now)
}

func (s *AttemptService) startStandard(attempt *model.TestAttempt, tpl *model.TestTemplate, now time.Time) (*StartAttemptResponse, error) {
	sampled, err := s.Sampler.SampleTemplate(tpl.Sections, now)
	if err != nil {
		return nil, err
	}

	answers := make([]model.TestAnswer, len(sampled))
	ids := make([]uint, len(sampled))
	for i, sq := range sampled {
		answers[i] = model.TestAnswer{QuestionID: sq.QuestionID, PresentedOrder: i + 1}
		ids[i] = sq.QuestionID
	}

	if err := s.Attempts.Create(attempt, answers); err != nil {
		return nil, err
	}

	views, err := s.questionViews(ids)
	if err != nil {
		return nil, err
	}
	return &StartAttemptResponse{
		AttemptID:       attempt.ID,
		Mode:            attempt.Mode,
		StartedAt:       attempt.StartedAt,
		DurationMinutes: attempt.DurationMinutes,
		Questions:       views,
	}, nil
}

func (s *AttemptService) startAdaptive(attempt *model.TestAttempt, tpl *model.TestTemplate, now time.Time) (*StartAttemptResponse, error) {
	scopes := templateScopes(tpl)

	first, err := s.Adaptive.Next(attempt, scopes, nil, now)
	if err != nil {
		return nil, err
	}
	if first.Complete {
		total, eligible, derr := s.Pool.Diagnostics(scopes, now)
		if derr != nil {
			return nil, derr
		}
		return nil, &util.InsufficientPoolError{
			Tier:         string(attempt.CurrentDifficulty),
			Requested:    1,
			TotalInScope: total,
			Eligible:     eligible,
		}
	}

	placeholder := model.TestAnswer{QuestionID: first.QuestionID, PresentedOrder: 1}
	if err := s.Attempts.Create(attempt, []model.TestAnswer{placeholder}); err != nil {
		return nil, err
	}

	views, err := s.questionViews([]uint{first.QuestionID})
	if err != nil {
		return nil, err
	}
	return &StartAttemptResponse{
		AttemptID:       attempt.ID,
		Mode:            attempt.Mode,
		StartedAt:       attempt.StartedAt,
		DurationMinutes: attempt.DurationMinutes,
		Questions:       views,
	}, nil
}

// SubmitAnswer records one answer. Resubmission for the same question
// overwrites the previous value; it never duplicates the row. In adaptive
// mode the recorded answer also adjusts the difficulty tier and yields the
// next question, or signals completion.
func (s *AttemptService) SubmitAnswer(userID uint, attemptID string, req SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	attempt, err := s.inProgress(userID, attemptID)
	if err != nil {
		return nil, err
	}

	ans, err := s.Answers.FindByAttemptAndQuestion(attemptID, req.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	question, err := s.Questions.FindByID(req.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	if req.SelectedOptionIndex < 0 || req.SelectedOptionIndex >= len(question.Options) {
		return nil, util.Validation("selectedOptionIndex", "out of range for question options")
	}
	if req.TimeTakenSeconds < 0 {
		return nil, util.Validation("timeTakenSeconds", "must not be negative")
	}

	selected := req.SelectedOptionIndex
	ans.SelectedOptionIndex = &selected
	ans.TimeTakenSeconds = req.TimeTakenSeconds
	if err := s.Answers.Save(ans); err != nil {
		return nil, err
	}

	if attempt.Mode != model.ModeAdaptive {
		return &SubmitAnswerResponse{Status: SubmitStatusOK}, nil
	}
	return s.advanceAdaptive(attempt, question, selected)
}

// advanceAdaptive applies the difficulty adjustment for the just-recorded
// answer, then runs one selection step. Adjustment strictly precedes
// selection.
func (s *AttemptService) advanceAdaptive(attempt *model.TestAttempt, question *model.Question, selected int) (*SubmitAnswerResponse, error) {
	correct := selected == question.CorrectOptionIndex
	attempt.CurrentDifficulty = AdjustTier(attempt.CurrentDifficulty, correct)
	if err := s.Attempts.Save(attempt); err != nil {
		return nil, err
	}

	tpl, err := s.Templates.FindByID(attempt.TemplateID)
	if err != nil {
		return nil, err
	}

	existing, err := s.Answers.FindByAttempt(attempt.ID)
	if err != nil {
		return nil, err
	}
	presented := make(map[uint]bool, len(existing))
	for _, a := range existing {
		presented[a.QuestionID] = true
	}

	next, err := s.Adaptive.Next(attempt, templateScopes(tpl), presented, s.now())
	if err != nil {
		return nil, err
	}
	if next.Complete {
		return &SubmitAnswerResponse{Status: SubmitStatusComplete}, nil
	}

	placeholder := &model.TestAnswer{
		AttemptID:      attempt.ID,
		QuestionID:     next.QuestionID,
		PresentedOrder: len(existing) + 1,
	}
	if err := s.Answers.Create(placeholder); err != nil {
		return nil, err
	}

	views, err := s.questionViews([]uint{next.QuestionID})
	if err != nil {
		return nil, err
	}
	return &SubmitAnswerResponse{Status: SubmitStatusNext, NextQuestion: &views[0]}, nil
}

// ToggleReview flips the review flag on one presented question. No effect on
// scoring.
func (s *AttemptService) ToggleReview(userID uint, attemptID string, questionID uint) (bool, error) {
	if _, err := s.inProgress(userID, attemptID); err != nil {
		return false, err
	}

	ans, err := s.Answers.FindByAttemptAndQuestion(attemptID, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, util.ErrQuestionNotFound
		}
		return false, err
	}

	ans.IsMarkedForReview = !ans.IsMarkedForReview
	if err := s.Answers.Save(ans); err != nil {
		return false, err
	}
	return ans.IsMarkedForReview, nil
}

// Finish completes the attempt and scores it. Finishing an already-terminal
// attempt is an idempotent no-op that returns the stored score without
// re-running scoring side effects, which also settles the race between an
// explicit client finish and the timeout sweep.
func (s *AttemptService) Finish(userID uint, attemptID string) (*FinalScore, error) {
	attempt, err := s.ownedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status.Terminal() {
		return s.storedScore(attempt)
	}
	return s.finalize(attempt, model.StatusCompleted)
}

// Abandon marks the attempt abandoned. It is still scored on whatever was
// attempted; only the status flag differs for reporting.
func (s *AttemptService) Abandon(userID uint, attemptID string) (*FinalScore, error) {
	attempt, err := s.ownedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status.Terminal() {
		return nil, util.ErrStateConflict
	}
	return s.finalize(attempt, model.StatusAbandoned)
}

// ExpireOverdue finishes every in-progress attempt whose allotted duration
// has elapsed. It funnels into the same idempotent finalize claim as an
// explicit finish, so racing a client call is harmless. Returns the number of
// attempts it finalized.
func (s *AttemptService) ExpireOverdue() (int, error) {
	overdue, err := s.Attempts.FindOverdue(s.now())
	if err != nil {
		return 0, err
	}
	finished := 0
	for i := range overdue {
		if _, err := s.finalize(&overdue[i], model.StatusCompleted); err != nil {
			return finished, err
		}
		finished++
	}
	return finished, nil
}

// AnswerDetail is one answer row joined with its question, for review
// screens. The correct index is revealed here, after the fact.
type AnswerDetail struct {
	QuestionID          uint         `json:"questionId"`
	Text                string       `json:"text"`
	Options             []OptionView `json:"options"`
	Explanation         string       `json:"explanation,omitempty"`
	PresentedOrder      int          `json:"presentedOrder"`
	SelectedOptionIndex *int         `json:"selectedOptionIndex,omitempty"`
	CorrectOptionIndex  int          `json:"correctOptionIndex"`
	IsCorrect           *bool        `json:"isCorrect,omitempty"`
	MarksAwarded        *float64     `json:"marksAwarded,omitempty"`
	TimeTakenSeconds    int          `json:"timeTakenSeconds"`
	IsMarkedForReview   bool         `json:"isMarkedForReview"`
}

type AttemptDetail struct {
	Attempt *model.TestAttempt `json:"attempt"`
	Answers []AnswerDetail     `json:"answers"`
}

// GetDetail returns the full answer list with correctness. Admins can read
// any attempt; other callers only their own.
func (s *AttemptService) GetDetail(userID uint, role model.UserRole, attemptID string) (*AttemptDetail, error) {
	attempt, err := s.findAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if role != model.Admin && attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	answers, err := s.Answers.FindByAttempt(attemptID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(answers))
	for i, a := range answers {
		ids[i] = a.QuestionID
	}
	questions, err := s.Questions.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	details := make([]AnswerDetail, len(answers))
	for i, a := range answers {
		q := byID[a.QuestionID]
		details[i] = AnswerDetail{
			QuestionID:          a.QuestionID,
			Text:                q.Text,
			Options:             optionViews(q.Options),
			Explanation:         q.Explanation,
			PresentedOrder:      a.PresentedOrder,
			SelectedOptionIndex: a.SelectedOptionIndex,
			CorrectOptionIndex:  q.CorrectOptionIndex,
			IsCorrect:           a.IsCorrect,
			MarksAwarded:        a.MarksAwarded,
			TimeTakenSeconds:    a.TimeTakenSeconds,
			IsMarkedForReview:   a.IsMarkedForReview,
		}
	}
	return &AttemptDetail{Attempt: attempt, Answers: details}, nil
}

// finalize computes the score and atomically claims the terminal state. When
// a concurrent finish wins the claim, the already-stored score is returned
// and this caller's scoring side effects are discarded.
func (s *AttemptService) finalize(attempt *model.TestAttempt, status model.AttemptStatus) (*FinalScore, error) {
	answers, err := s.Answers.FindByAttempt(attempt.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(answers))
	for i, a := range answers {
		ids[i] = a.QuestionID
	}
	questions, err := s.Questions.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	res := s.Scorer.Score(answers, byID)
	now := s.now()

	claimed, err := s.Attempts.Finalize(attempt.ID, status, now, res.ScorePercent, res.Answers)
	if err != nil {
		return nil, err
	}
	if !claimed {
		current, err := s.findAttempt(attempt.ID)
		if err != nil {
			return nil, err
		}
		return s.storedScore(current)
	}

	return &FinalScore{
		AttemptID:    attempt.ID,
		Status:       status,
		Attempted:    res.Attempted,
		Correct:      res.Correct,
		ScorePercent: res.ScorePercent,
		CompletedAt:  now,
	}, nil
}

// storedScore rebuilds a FinalScore from already-persisted rows without
// re-running the scorer's writes.
func (s *AttemptService) storedScore(attempt *model.TestAttempt) (*FinalScore, error) {
	answers, err := s.Answers.FindByAttempt(attempt.ID)
	if err != nil {
		return nil, err
	}

	score := &FinalScore{AttemptID: attempt.ID, Status: attempt.Status}
	if attempt.ScorePercent != nil {
		score.ScorePercent = *attempt.ScorePercent
	}
	if attempt.CompletedAt != nil {
		score.CompletedAt = *attempt.CompletedAt
	}
	for _, a := range answers {
		if !a.Attempted() {
			continue
		}
		score.Attempted++
		if a.IsCorrect != nil && *a.IsCorrect {
			score.Correct++
		}
	}
	return score, nil
}

// ListAttempts pages through a user's attempt history, newest first.
func (s *AttemptService) ListAttempts(userID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Attempts.ListByUser(userID, page, limit)
}

func (s *AttemptService) findAttempt(attemptID string) (*model.TestAttempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return attempt, nil
}

func (s *AttemptService) ownedAttempt(userID uint, attemptID string) (*model.TestAttempt, error) {
	attempt, err := s.findAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return attempt, nil
}

// inProgress loads the attempt for a mutating call. An attempt past its
// deadline is finished on the spot (the lazy half of the timeout contract)
// and the mutating call is rejected.
func (s *AttemptService) inProgress(userID uint, attemptID string) (*model.TestAttempt, error) {
	attempt, err := s.ownedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status.Terminal() {
		return nil, util.ErrStateConflict
	}
	if attempt.Expired(s.now()) {
		if _, err := s.finalize(attempt, model.StatusCompleted); err != nil {
			return nil, err
		}
		return nil, util.ErrStateConflict
	}
	return attempt, nil
}

func (s *AttemptService) questionViews(ids []uint) ([]QuestionView, error) {
	questions, err := s.Questions.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	// Preserve the sampled presentation order.
	views := make([]QuestionView, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return nil, util.ErrQuestionNotFound
		}
		views = append(views, QuestionView{
			ID:         q.ID,
			Text:       q.Text,
			Difficulty: q.Difficulty,
			Options:    optionViews(q.Options),
		})
	}
	return views, nil
}

func optionViews(options []model.QuestionOption) []OptionView {
	views := make([]OptionView, len(options))
	for i, o := range options {
		views[i] = OptionView{Order: o.OptionOrder, Text: o.Text}
	}
	return views
}

func templateScopes(tpl *model.TestTemplate) []model.PoolScope {
	scopes := make([]model.PoolScope, len(tpl.Sections))
	for i := range tpl.Sections {
		scopes[i] = tpl.Sections[i].Scope()
	}
	return scopes
}
