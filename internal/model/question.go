package model

import "time"

type DifficultyTier string

const (
	TierEasy   DifficultyTier = "Easy"
	TierMedium DifficultyTier = "Medium"
	TierHard   DifficultyTier = "Hard"
)

// Harder returns the next tier up, clamped at Hard.
func (t DifficultyTier) Harder() DifficultyTier {
	switch t {
	case TierEasy:
		return TierMedium
	case TierMedium:
		return TierHard
	default:
		return TierHard
	}
}

// Easier returns the next tier down, clamped at Easy.
func (t DifficultyTier) Easier() DifficultyTier {
	switch t {
	case TierHard:
		return TierMedium
	case TierMedium:
		return TierEasy
	default:
		return TierEasy
	}
}

func (t DifficultyTier) Valid() bool {
	return t == TierEasy || t == TierMedium || t == TierHard
}

// swagger:model Question
type Question struct {
	BaseModel
	PaperID            uint             `gorm:"index;type:bigint unsigned" json:"paperId"`
	SectionID          *uint            `gorm:"index;type:bigint unsigned" json:"sectionId,omitempty"`
	SubsectionID       *uint            `gorm:"index;type:bigint unsigned" json:"subsectionId,omitempty"`
	Text               string           `gorm:"type:text;not null" json:"text"`
	Difficulty         DifficultyTier   `gorm:"size:20;default:'Medium'" json:"difficulty"`
	CorrectOptionIndex int              `json:"correctOptionIndex"`
	Explanation        string           `gorm:"type:text" json:"explanation"`
	ValidFrom          time.Time        `json:"validFrom"`
	ValidUntil         time.Time        `json:"validUntil"`
	Options            []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// EligibleAt reports whether the question's validity window contains t.
func (q *Question) EligibleAt(t time.Time) bool {
	return !q.ValidFrom.After(t) && !q.ValidUntil.Before(t)
}

// swagger:model QuestionOption
type QuestionOption struct {
	BaseModel
	QuestionID  uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	OptionOrder int    `gorm:"default:0" json:"order"`
	Text        string `gorm:"type:text;not null" json:"text"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
