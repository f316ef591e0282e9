package service

import (
	"cbt_backend/internal/model"
	"cbt_backend/internal/repository"
	"cbt_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type TemplateService struct {
	Repo   *repository.TemplateRepository
	Papers *repository.PaperRepository
}

func NewTemplateService(repo *repository.TemplateRepository, papers *repository.PaperRepository) *TemplateService {
	return &TemplateService{Repo: repo, Papers: papers}
}

type TemplateSectionRequest struct {
	PaperID       uint  `json:"paperId" binding:"required"`
	SectionID     *uint `json:"sectionId"`
	SubsectionID  *uint `json:"subsectionId"`
	QuestionCount int   `json:"questionCount"`
}

type TemplateRequest struct {
	Name        string                   `json:"name" binding:"required"`
	Description string                   `json:"description"`
	Sections    []TemplateSectionRequest `json:"sections" binding:"required"`
}

func (s *TemplateService) Create(creatorID uint, req TemplateRequest) (*model.TestTemplate, error) {
	sections, err := s.buildSections(req.Sections)
	if err != nil {
		return nil, err
	}

	tpl := &model.TestTemplate{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   creatorID,
		IsActive:    true,
		Sections:    sections,
	}
	if err := s.Repo.Create(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *TemplateService) Update(id uint, req TemplateRequest) (*model.TestTemplate, error) {
	tpl, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	sections, err := s.buildSections(req.Sections)
	if err != nil {
		return nil, err
	}

	tpl.Name = req.Name
	tpl.Description = req.Description
	tpl.Sections = nil
	if err := s.Repo.Update(tpl); err != nil {
		return nil, err
	}
	if err := s.Repo.ReplaceSections(tpl.ID, sections); err != nil {
		return nil, err
	}
	tpl.Sections = sections
	return tpl, nil
}

func (s *TemplateService) Get(id uint) (*model.TestTemplate, error) {
	tpl, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTemplateNotFound
		}
		return nil, err
	}
	return tpl, nil
}

func (s *TemplateService) List(page, limit int) ([]model.TestTemplate, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Repo.List(page, limit)
}

func (s *TemplateService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.Repo.Delete(id)
}

// buildSections validates each requested draw against the taxonomy and
// assigns the presentation order from the request order.
func (s *TemplateService) buildSections(reqs []TemplateSectionRequest) ([]model.TestTemplateSection, error) {
	if len(reqs) == 0 {
		return nil, util.Validation("sections", "must not be empty")
	}

	sections := make([]model.TestTemplateSection, len(reqs))
	for i, r := range reqs {
		if r.QuestionCount <= 0 {
			return nil, util.Validation("questionCount", "must be positive")
		}
		if _, err := s.Papers.FindByID(r.PaperID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrPaperNotFound
			}
			return nil, err
		}
		if r.SubsectionID != nil && r.SectionID == nil {
			return nil, util.Validation("subsectionId", "requires sectionId")
		}
		if r.SectionID != nil {
			section, err := s.Papers.FindSectionByID(*r.SectionID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, util.ErrSectionNotFound
				}
				return nil, err
			}
			if section.PaperID != r.PaperID {
				return nil, util.Validation("sectionId", "section belongs to a different paper")
			}
		}
		sections[i] = model.TestTemplateSection{
			PaperID:       r.PaperID,
			SectionID:     r.SectionID,
			SubsectionID:  r.SubsectionID,
			QuestionCount: r.QuestionCount,
			SectionOrder:  i,
		}
	}
	return sections, nil
}
