package model

// swagger:model TestTemplate
type TestTemplate struct {
	BaseModel
	Name        string                `gorm:"size:255;not null" json:"name"`
	Description string                `gorm:"type:text" json:"description"`
	CreatorID   uint                  `gorm:"index;type:bigint unsigned" json:"creatorId"`
	IsActive    bool                  `gorm:"default:true" json:"isActive"`
	Sections    []TestTemplateSection `gorm:"foreignKey:TemplateID" json:"sections,omitempty"`
}

func (TestTemplate) TableName() string {
	return "test_templates"
}

// TestTemplateSection describes one draw of the sampler: a filter scope and
// how many questions to take from it. QuestionCount is ignored in adaptive
// mode, where the attempt-level max_questions cap governs instead.
//
// swagger:model TestTemplateSection
type TestTemplateSection struct {
	BaseModel
	TemplateID    uint  `gorm:"index;type:bigint unsigned" json:"templateId"`
	PaperID       uint  `gorm:"type:bigint unsigned" json:"paperId"`
	SectionID     *uint `gorm:"type:bigint unsigned" json:"sectionId,omitempty"`
	SubsectionID  *uint `gorm:"type:bigint unsigned" json:"subsectionId,omitempty"`
	QuestionCount int   `gorm:"default:0" json:"questionCount"`
	SectionOrder  int   `gorm:"default:0" json:"order"`
}

func (TestTemplateSection) TableName() string {
	return "test_template_sections"
}

// Scope returns the pool filter this section describes.
func (s *TestTemplateSection) Scope() PoolScope {
	return PoolScope{
		PaperID:      s.PaperID,
		SectionID:    s.SectionID,
		SubsectionID: s.SubsectionID,
	}
}
