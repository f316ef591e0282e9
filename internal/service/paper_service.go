package service

import (
	"cbt_backend/internal/model"
	"cbt_backend/internal/repository"
	"cbt_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// PaperService manages the paper/section/subsection taxonomy that question
// pools are scoped against.
type PaperService struct {
	Repo *repository.PaperRepository
}

func NewPaperService(repo *repository.PaperRepository) *PaperService {
	return &PaperService{Repo: repo}
}

type PaperRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type SectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *PaperService) CreatePaper(req PaperRequest) (*model.Paper, error) {
	paper := &model.Paper{Name: req.Name, Description: req.Description}
	if err := s.Repo.Create(paper); err != nil {
		return nil, err
	}
	return paper, nil
}

func (s *PaperService) UpdatePaper(id uint, req PaperRequest) (*model.Paper, error) {
	paper, err := s.findPaper(id)
	if err != nil {
		return nil, err
	}
	paper.Name = req.Name
	paper.Description = req.Description
	if err := s.Repo.Update(paper); err != nil {
		return nil, err
	}
	return paper, nil
}

func (s *PaperService) GetPaper(id uint) (*model.Paper, error) {
	return s.findPaper(id)
}

func (s *PaperService) ListPapers(page, limit int) ([]model.Paper, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Repo.List(page, limit)
}

// DeletePaper removes the paper and everything scoped under it: sections,
// subsections and questions.
func (s *PaperService) DeletePaper(id uint) error {
	if _, err := s.findPaper(id); err != nil {
		return err
	}
	return s.Repo.DeletePaperCascade(id)
}

func (s *PaperService) CreateSection(paperID uint, req SectionRequest) (*model.Section, error) {
	if _, err := s.findPaper(paperID); err != nil {
		return nil, err
	}
	section := &model.Section{PaperID: paperID, Name: req.Name, Description: req.Description}
	if err := s.Repo.CreateSection(section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *PaperService) UpdateSection(id uint, req SectionRequest) (*model.Section, error) {
	section, err := s.findSection(id)
	if err != nil {
		return nil, err
	}
	section.Name = req.Name
	section.Description = req.Description
	if err := s.Repo.UpdateSection(section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *PaperService) DeleteSection(id uint) error {
	if _, err := s.findSection(id); err != nil {
		return err
	}
	return s.Repo.DeleteSectionCascade(id)
}

func (s *PaperService) CreateSubsection(sectionID uint, req SectionRequest) (*model.Subsection, error) {
	if _, err := s.findSection(sectionID); err != nil {
		return nil, err
	}
	sub := &model.Subsection{SectionID: sectionID, Name: req.Name, Description: req.Description}
	if err := s.Repo.CreateSubsection(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *PaperService) UpdateSubsection(id uint, req SectionRequest) (*model.Subsection, error) {
	sub, err := s.findSubsection(id)
	if err != nil {
		return nil, err
	}
	sub.Name = req.Name
	sub.Description = req.Description
	if err := s.Repo.UpdateSubsection(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *PaperService) DeleteSubsection(id uint) error {
	if _, err := s.findSubsection(id); err != nil {
		return err
	}
	return s.Repo.DeleteSubsectionCascade(id)
}

func (s *PaperService) findPaper(id uint) (*model.Paper, error) {
	paper, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPaperNotFound
		}
		return nil, err
	}
	return paper, nil
}

func (s *PaperService) findSection(id uint) (*model.Section, error) {
	section, err := s.Repo.FindSectionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSectionNotFound
		}
		return nil, err
	}
	return section, nil
}

func (s *PaperService) findSubsection(id uint) (*model.Subsection, error) {
	sub, err := s.Repo.FindSubsectionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSectionNotFound
		}
		return nil, err
	}
	return sub, nil
}
