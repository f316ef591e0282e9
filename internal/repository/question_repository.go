package repository

import (
	"cbt_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("option_order")
	}).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var qs []model.Question
	err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("option_order")
	}).Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) List(scope model.PoolScope, page, limit int) ([]model.Question, int64, error) {
	tx := scopedQuery(r.DB.Model(&model.Question{}), scope)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var qs []model.Question
	err := scopedQuery(r.DB.Preload("Options"), scope).
		Offset((page - 1) * limit).Limit(limit).Order("id").
		Find(&qs).Error
	return qs, total, err
}

// ReplaceOptions deletes and recreates a question's options in one transaction.
func (r *QuestionRepository) ReplaceOptions(questionID uint, options []model.QuestionOption) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.QuestionOption{}).Error; err != nil {
			return err
		}
		if len(options) == 0 {
			return nil
		}
		for i := range options {
			options[i].QuestionID = questionID
		}
		return tx.Create(&options).Error
	})
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.QuestionOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, id).Error
	})
}

// EligibleIDs returns the ids of questions inside scope whose validity window
// contains now. Re-evaluated on every attempt start, never cached.
func (r *QuestionRepository) EligibleIDs(scope model.PoolScope, now time.Time) ([]uint, error) {
	var ids []uint
	err := scopedQuery(r.DB.Model(&model.Question{}), scope).
		Where("valid_from <= ? AND valid_until >= ?", now, now).
		Pluck("id", &ids).Error
	return ids, err
}

// CountInScope counts every question matching scope regardless of validity,
// for pool diagnostics.
func (r *QuestionRepository) CountInScope(scope model.PoolScope) (int64, error) {
	var count int64
	err := scopedQuery(r.DB.Model(&model.Question{}), scope).Count(&count).Error
	return count, err
}

// EligibleIDsByTier returns currently-valid question ids at the given
// difficulty tier across any of the scopes.
func (r *QuestionRepository) EligibleIDsByTier(scopes []model.PoolScope, tier model.DifficultyTier, now time.Time) ([]uint, error) {
	if len(scopes) == 0 {
		return nil, nil
	}

	var conds []string
	var args []interface{}
	for _, scope := range scopes {
		cond := "paper_id = ?"
		args = append(args, scope.PaperID)
		if scope.SectionID != nil {
			cond += " AND section_id = ?"
			args = append(args, *scope.SectionID)
		}
		if scope.SubsectionID != nil {
			cond += " AND subsection_id = ?"
			args = append(args, *scope.SubsectionID)
		}
		conds = append(conds, "("+cond+")")
	}

	var ids []uint
	err := r.DB.Model(&model.Question{}).
		Where("difficulty = ?", tier).
		Where("valid_from <= ? AND valid_until >= ?", now, now).
		Where(strings.Join(conds, " OR "), args...).
		Pluck("id", &ids).Error
	return ids, err
}

func scopedQuery(tx *gorm.DB, scope model.PoolScope) *gorm.DB {
	tx = tx.Where("paper_id = ?", scope.PaperID)
	if scope.SectionID != nil {
		tx = tx.Where("section_id = ?", *scope.SectionID)
	}
	if scope.SubsectionID != nil {
		tx = tx.Where("subsection_id = ?", *scope.SubsectionID)
	}
	return tx
}
