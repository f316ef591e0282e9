package model

import "time"

type AttemptMode string

const (
	ModeStandard AttemptMode = "standard"
	ModeAdaptive AttemptMode = "adaptive"
)

type AttemptStatus string

const (
	StatusInProgress AttemptStatus = "InProgress"
	StatusCompleted  AttemptStatus = "Completed"
	StatusAbandoned  AttemptStatus = "Abandoned"
)

// Terminal reports whether no further transitions are allowed.
func (s AttemptStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// TestAttempt is one user's timed run through a template.
//
// swagger:model TestAttempt
type TestAttempt struct {
	UUIDBase
	UserID     uint        `gorm:"index;type:bigint unsigned" json:"userId"`
	TemplateID uint        `gorm:"index;type:bigint unsigned" json:"templateId"`
	Mode       AttemptMode `gorm:"size:20;not null" json:"mode"`

	Status      AttemptStatus `gorm:"size:20;default:'InProgress';index" json:"status"`
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`

	DurationMinutes int `gorm:"default:0" json:"durationMinutes"`

	// Adaptive-mode state. Zero / empty for standard attempts.
	MaxQuestions      int            `gorm:"default:0" json:"maxQuestions,omitempty"`
	CurrentDifficulty DifficultyTier `gorm:"size:20" json:"currentDifficulty,omitempty"`

	ScorePercent *float64 `json:"scorePercent,omitempty"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// Deadline is the instant at which the attempt times out.
func (a *TestAttempt) Deadline() time.Time {
	return a.StartedAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Expired reports whether the allotted duration has elapsed at now.
func (a *TestAttempt) Expired(now time.Time) bool {
	return a.DurationMinutes > 0 && !now.Before(a.Deadline())
}
