package model

// TestAnswer is one row per question ever presented to an attempt. A row with
// a nil SelectedOptionIndex was presented but never answered; such rows never
// count toward the scoring denominator. (attempt_id, question_id) is unique:
// a question is never presented twice within one attempt.
//
// swagger:model TestAnswer
type TestAnswer struct {
	UUIDBase
	AttemptID  string `gorm:"uniqueIndex:uq_attempt_question;type:varchar(36);not null" json:"attemptId"`
	QuestionID uint   `gorm:"uniqueIndex:uq_attempt_question;type:bigint unsigned;not null" json:"questionId"`

	// Order in which the question was presented, 1-based.
	PresentedOrder int `gorm:"default:0" json:"presentedOrder"`

	SelectedOptionIndex *int `json:"selectedOptionIndex,omitempty"`
	TimeTakenSeconds    int  `gorm:"default:0" json:"timeTakenSeconds"`
	IsMarkedForReview   bool `gorm:"default:false" json:"isMarkedForReview"`

	// Written by the scorer as a side effect of finalization, nil before.
	IsCorrect    *bool    `json:"isCorrect,omitempty"`
	MarksAwarded *float64 `json:"marksAwarded,omitempty"`
}

func (TestAnswer) TableName() string {
	return "test_answers"
}

// Attempted reports whether the question was actually answered.
func (a *TestAnswer) Attempted() bool {
	return a.SelectedOptionIndex != nil
}
