package repository

import (
	"cbt_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// Create persists the attempt together with its initial answer placeholders
// in one transaction, so a failed start never leaves a partial question set.
func (r *AttemptRepository) Create(attempt *model.TestAttempt, answers []model.TestAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		if len(answers) == 0 {
			return nil
		}
		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		return tx.Create(&answers).Error
	})
}

func (r *AttemptRepository) FindByID(id string) (*model.TestAttempt, error) {
	var a model.TestAttempt
	if err := r.DB.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) Save(a *model.TestAttempt) error {
	return r.DB.Save(a).Error
}

// Finalize claims the terminal state and persists the scoring side effects in
// one transaction. The claim is a conditional update on status = InProgress;
// when a concurrent finish already won, no rows match, nothing is written and
// claimed is false.
func (r *AttemptRepository) Finalize(attemptID string, status model.AttemptStatus, completedAt time.Time, score float64, answers []model.TestAnswer) (bool, error) {
	claimed := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.TestAttempt{}).
			Where("id = ? AND status = ?", attemptID, model.StatusInProgress).
			Updates(map[string]interface{}{
				"status":        status,
				"completed_at":  completedAt,
				"score_percent": score,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		claimed = true

		for i := range answers {
			a := &answers[i]
			if err := tx.Model(&model.TestAnswer{}).
				Where("id = ?", a.ID).
				Updates(map[string]interface{}{
					"is_correct":    a.IsCorrect,
					"marks_awarded": a.MarksAwarded,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

// FindOverdue lists in-progress attempts whose allotted duration has elapsed.
func (r *AttemptRepository) FindOverdue(now time.Time) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.DB.Where("status = ? AND duration_minutes > 0 AND DATE_ADD(started_at, INTERVAL duration_minutes MINUTE) <= ?",
		model.StatusInProgress, now).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByUser(userID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	var attempts []model.TestAttempt
	var total int64
	tx := r.DB.Model(&model.TestAttempt{}).Where("user_id = ?", userID)
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Where("user_id = ?", userID).
		Order("started_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}
