package model

// Paper / Section / Subsection form the three-level filter taxonomy for
// questions. The attempt engine only ever reads them through PoolScope.

// swagger:model Paper
type Paper struct {
	BaseModel
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	Sections    []Section `gorm:"foreignKey:PaperID" json:"sections,omitempty"`
}

func (Paper) TableName() string {
	return "papers"
}

// swagger:model Section
type Section struct {
	BaseModel
	PaperID     uint         `gorm:"index;type:bigint unsigned" json:"paperId"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Subsections []Subsection `gorm:"foreignKey:SectionID" json:"subsections,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}

// swagger:model Subsection
type Subsection struct {
	BaseModel
	SectionID   uint   `gorm:"index;type:bigint unsigned" json:"sectionId"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Subsection) TableName() string {
	return "subsections"
}

// PoolScope is the read-only filter the attempt engine applies when resolving
// an eligible question pool. SectionID and SubsectionID narrow the scope when
// set.
type PoolScope struct {
	PaperID      uint  `json:"paperId"`
	SectionID    *uint `json:"sectionId,omitempty"`
	SubsectionID *uint `json:"subsectionId,omitempty"`
}
