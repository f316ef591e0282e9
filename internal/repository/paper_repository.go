package repository

import (
	"cbt_backend/internal/model"

	"gorm.io/gorm"
)

type PaperRepository struct {
	DB *gorm.DB
}

func NewPaperRepository(db *gorm.DB) *PaperRepository {
	return &PaperRepository{DB: db}
}

func (r *PaperRepository) Create(paper *model.Paper) error {
	return r.DB.Create(paper).Error
}

func (r *PaperRepository) Update(paper *model.Paper) error {
	return r.DB.Save(paper).Error
}

func (r *PaperRepository) FindByID(id uint) (*model.Paper, error) {
	var p model.Paper
	if err := r.DB.Preload("Sections.Subsections").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaperRepository) List(page, limit int) ([]model.Paper, int64, error) {
	var papers []model.Paper
	var total int64
	if err := r.DB.Model(&model.Paper{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Preload("Sections.Subsections").
		Offset((page - 1) * limit).Limit(limit).Order("id").
		Find(&papers).Error
	return papers, total, err
}

func (r *PaperRepository) CreateSection(section *model.Section) error {
	return r.DB.Create(section).Error
}

func (r *PaperRepository) FindSectionByID(id uint) (*model.Section, error) {
	var s model.Section
	if err := r.DB.Preload("Subsections").First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PaperRepository) UpdateSection(section *model.Section) error {
	return r.DB.Save(section).Error
}

func (r *PaperRepository) CreateSubsection(sub *model.Subsection) error {
	return r.DB.Create(sub).Error
}

func (r *PaperRepository) FindSubsectionByID(id uint) (*model.Subsection, error) {
	var s model.Subsection
	if err := r.DB.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PaperRepository) UpdateSubsection(sub *model.Subsection) error {
	return r.DB.Save(sub).Error
}

// DeletePaperCascade removes a paper together with its sections, subsections,
// questions and question options, in one transaction. Cascades are explicit
// application logic here, never a database feature.
func (r *PaperRepository) DeletePaperCascade(paperID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var sectionIDs []uint
		if err := tx.Model(&model.Section{}).Where("paper_id = ?", paperID).Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}
		if len(sectionIDs) > 0 {
			if err := tx.Where("section_id IN ?", sectionIDs).Delete(&model.Subsection{}).Error; err != nil {
				return err
			}
		}
		if err := deleteQuestionsWhere(tx, "paper_id = ?", paperID); err != nil {
			return err
		}
		if err := tx.Where("paper_id = ?", paperID).Delete(&model.Section{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Paper{}, paperID).Error
	})
}

// DeleteSectionCascade removes a section, its subsections and its questions.
func (r *PaperRepository) DeleteSectionCascade(sectionID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", sectionID).Delete(&model.Subsection{}).Error; err != nil {
			return err
		}
		if err := deleteQuestionsWhere(tx, "section_id = ?", sectionID); err != nil {
			return err
		}
		return tx.Delete(&model.Section{}, sectionID).Error
	})
}

// DeleteSubsectionCascade removes a subsection and its questions.
func (r *PaperRepository) DeleteSubsectionCascade(subsectionID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteQuestionsWhere(tx, "subsection_id = ?", subsectionID); err != nil {
			return err
		}
		return tx.Delete(&model.Subsection{}, subsectionID).Error
	})
}

func deleteQuestionsWhere(tx *gorm.DB, query string, args ...interface{}) error {
	var questionIDs []uint
	if err := tx.Model(&model.Question{}).Where(query, args...).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) == 0 {
		return nil
	}
	if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.QuestionOption{}).Error; err != nil {
		return err
	}
	return tx.Where(query, args...).Delete(&model.Question{}).Error
}
