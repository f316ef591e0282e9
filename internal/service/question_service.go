package service

import (
	"cbt_backend/internal/model"
	"cbt_backend/internal/repository"
	"cbt_backend/internal/util"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	questionCacheKey = "question:%d"
	questionCacheTTL = 10 * time.Minute
)

// farFuture is the default validity horizon for questions created without an
// explicit expiry.
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

type QuestionService struct {
	Repo   *repository.QuestionRepository
	Papers *repository.PaperRepository
	Redis  *redis.Client
}

func NewQuestionService(repo *repository.QuestionRepository, papers *repository.PaperRepository, rdb *redis.Client) *QuestionService {
	return &QuestionService{Repo: repo, Papers: papers, Redis: rdb}
}

type QuestionRequest struct {
	PaperID            uint            `json:"paperId" binding:"required"`
	SectionID          *uint           `json:"sectionId"`
	SubsectionID       *uint           `json:"subsectionId"`
	Text               string          `json:"text" binding:"required"`
	Difficulty         string          `json:"difficulty"`
	Options            json.RawMessage `json:"options" binding:"required"`
	CorrectOptionIndex int             `json:"correctOptionIndex"`
	Explanation        string          `json:"explanation"`
	ValidFrom          *time.Time      `json:"validFrom"`
	ValidUntil         *time.Time      `json:"validUntil"`
}

// optionPayload is the verbose form accepted by NormalizeOptions.
type optionPayload struct {
	Order *int   `json:"order"`
	Text  string `json:"text"`
}

// NormalizeOptions accepts either a plain array of strings or an array of
// {order, text} objects and returns options with a dense 0-based order.
// Objects without an explicit order take their array position.
func NormalizeOptions(raw json.RawMessage) ([]model.QuestionOption, error) {
	if len(raw) == 0 {
		return nil, util.Validation("options", "must not be empty")
	}

	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		opts := make([]model.QuestionOption, len(plain))
		for i, text := range plain {
			opts[i] = model.QuestionOption{OptionOrder: i, Text: text}
		}
		return validateOptions(opts)
	}

	var verbose []optionPayload
	if err := json.Unmarshal(raw, &verbose); err != nil {
		return nil, util.Validation("options", "must be an array of strings or {order, text} objects")
	}
	opts := make([]model.QuestionOption, len(verbose))
	for i, p := range verbose {
		order := i
		if p.Order != nil {
			order = *p.Order
		}
		opts[i] = model.QuestionOption{OptionOrder: order, Text: p.Text}
	}
	return validateOptions(opts)
}

func validateOptions(opts []model.QuestionOption) ([]model.QuestionOption, error) {
	if len(opts) < 2 {
		return nil, util.Validation("options", "at least two options required")
	}
	seen := make(map[int]bool, len(opts))
	for _, o := range opts {
		if o.Text == "" {
			return nil, util.Validation("options", "option text must not be empty")
		}
		if o.OptionOrder < 0 || o.OptionOrder >= len(opts) || seen[o.OptionOrder] {
			return nil, util.Validation("options", "option order must be dense and unique")
		}
		seen[o.OptionOrder] = true
	}
	return opts, nil
}

func (s *QuestionService) Create(req QuestionRequest) (*model.Question, error) {
	options, err := NormalizeOptions(req.Options)
	if err != nil {
		return nil, err
	}
	if req.CorrectOptionIndex < 0 || req.CorrectOptionIndex >= len(options) {
		return nil, util.Validation("correctOptionIndex", "out of range for options")
	}

	tier := model.DifficultyTier(req.Difficulty)
	if req.Difficulty == "" {
		tier = model.TierMedium
	}
	if !tier.Valid() {
		return nil, util.Validation("difficulty", "must be Easy, Medium or Hard")
	}

	if err := s.checkScope(req.PaperID, req.SectionID, req.SubsectionID); err != nil {
		return nil, err
	}

	q := &model.Question{
		PaperID:            req.PaperID,
		SectionID:          req.SectionID,
		SubsectionID:       req.SubsectionID,
		Text:               req.Text,
		Difficulty:         tier,
		CorrectOptionIndex: req.CorrectOptionIndex,
		Explanation:        req.Explanation,
		ValidFrom:          time.Now(),
		ValidUntil:         farFuture,
		Options:            options,
	}
	if req.ValidFrom != nil {
		q.ValidFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		q.ValidUntil = *req.ValidUntil
	}
	if !q.ValidUntil.After(q.ValidFrom) {
		return nil, util.Validation("validUntil", "must be after validFrom")
	}

	if err := s.Repo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Update(id uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	options, err := NormalizeOptions(req.Options)
	if err != nil {
		return nil, err
	}
	if req.CorrectOptionIndex < 0 || req.CorrectOptionIndex >= len(options) {
		return nil, util.Validation("correctOptionIndex", "out of range for options")
	}

	if err := s.checkScope(req.PaperID, req.SectionID, req.SubsectionID); err != nil {
		return nil, err
	}

	q.PaperID = req.PaperID
	q.SectionID = req.SectionID
	q.SubsectionID = req.SubsectionID
	q.Text = req.Text
	if req.Difficulty != "" {
		tier := model.DifficultyTier(req.Difficulty)
		if !tier.Valid() {
			return nil, util.Validation("difficulty", "must be Easy, Medium or Hard")
		}
		q.Difficulty = tier
	}
	q.CorrectOptionIndex = req.CorrectOptionIndex
	q.Explanation = req.Explanation
	if req.ValidFrom != nil {
		q.ValidFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		q.ValidUntil = *req.ValidUntil
	}
	if !q.ValidUntil.After(q.ValidFrom) {
		return nil, util.Validation("validUntil", "must be after validFrom")
	}

	q.Options = nil
	if err := s.Repo.Update(q); err != nil {
		return nil, err
	}
	if err := s.Repo.ReplaceOptions(q.ID, options); err != nil {
		return nil, err
	}
	q.Options = options
	s.invalidate(q.ID)
	return q, nil
}

// Get reads through the question cache. Cache failures fall back to the
// database.
func (s *QuestionService) Get(ctx context.Context, id uint) (*model.Question, error) {
	key := fmt.Sprintf(questionCacheKey, id)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var q model.Question
			if err := json.Unmarshal([]byte(cached), &q); err == nil {
				return &q, nil
			}
		}
	}

	q, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(q); err == nil {
			s.Redis.Set(ctx, key, payload, questionCacheTTL)
		}
	}
	return q, nil
}

func (s *QuestionService) List(scope model.PoolScope, page, limit int) ([]model.Question, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Repo.List(scope, page, limit)
}

func (s *QuestionService) Delete(id uint) error {
	if _, err := s.Repo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *QuestionService) checkScope(paperID uint, sectionID, subsectionID *uint) error {
	if _, err := s.Papers.FindByID(paperID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPaperNotFound
		}
		return err
	}
	if subsectionID != nil && sectionID == nil {
		return util.Validation("subsectionId", "requires sectionId")
	}
	if sectionID != nil {
		section, err := s.Papers.FindSectionByID(*sectionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrSectionNotFound
			}
			return err
		}
		if section.PaperID != paperID {
			return util.Validation("sectionId", "section belongs to a different paper")
		}
	}
	if subsectionID != nil {
		sub, err := s.Papers.FindSubsectionByID(*subsectionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrSectionNotFound
			}
			return err
		}
		if sub.SectionID != *sectionID {
			return util.Validation("subsectionId", "subsection belongs to a different section")
		}
	}
	return nil
}

func (s *QuestionService) invalidate(id uint) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), fmt.Sprintf(questionCacheKey, id))
}
