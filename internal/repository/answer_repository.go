package repository

import (
	"cbt_backend/internal/model"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) Create(a *model.TestAnswer) error {
	return r.DB.Create(a).Error
}

func (r *AnswerRepository) Save(a *model.TestAnswer) error {
	return r.DB.Save(a).Error
}

func (r *AnswerRepository) FindByAttempt(attemptID string) ([]model.TestAnswer, error) {
	var answers []model.TestAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).
		Order("presented_order").
		Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) FindByAttemptAndQuestion(attemptID string, questionID uint) (*model.TestAnswer, error) {
	var a model.TestAnswer
	if err := r.DB.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnswerRepository) CountPresented(attemptID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TestAnswer{}).Where("attempt_id = ?", attemptID).Count(&count).Error
	return count, err
}
