package repository

import (
	"cbt_backend/internal/model"

	"gorm.io/gorm"
)

type TemplateRepository struct {
	DB *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

// Create persists a template and its sections in one transaction.
func (r *TemplateRepository) Create(t *model.TestTemplate) error {
	return r.DB.Create(t).Error
}

func (r *TemplateRepository) FindByID(id uint) (*model.TestTemplate, error) {
	var t model.TestTemplate
	if err := r.DB.Preload("Sections", func(db *gorm.DB) *gorm.DB {
		return db.Order("section_order")
	}).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) List(page, limit int) ([]model.TestTemplate, int64, error) {
	var templates []model.TestTemplate
	var total int64
	if err := r.DB.Model(&model.TestTemplate{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Preload("Sections", func(db *gorm.DB) *gorm.DB {
		return db.Order("section_order")
	}).Offset((page - 1) * limit).Limit(limit).Order("id").
		Find(&templates).Error
	return templates, total, err
}

// ReplaceSections swaps a template's section list inside one transaction.
func (r *TemplateRepository) ReplaceSections(templateID uint, sections []model.TestTemplateSection) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&model.TestTemplateSection{}).Error; err != nil {
			return err
		}
		if len(sections) == 0 {
			return nil
		}
		for i := range sections {
			sections[i].TemplateID = templateID
		}
		return tx.Create(&sections).Error
	})
}

func (r *TemplateRepository) Update(t *model.TestTemplate) error {
	return r.DB.Save(t).Error
}

func (r *TemplateRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&model.TestTemplateSection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.TestTemplate{}, id).Error
	})
}
