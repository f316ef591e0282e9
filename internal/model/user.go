package model

import "time"

type UserRole string

const (
	Admin   UserRole = "admin"
	Student UserRole = "student"
)

// swagger:model User
type User struct {
	BaseModel
	Email         string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password      string     `gorm:"size:255;not null" json:"-"`
	FirstName     string     `gorm:"size:100" json:"firstName"`
	LastName      string     `gorm:"size:100" json:"lastName"`
	Role          UserRole   `gorm:"size:20;default:'student'" json:"role"`
	IsActive      bool       `gorm:"default:true" json:"isActive"`
	IsWhitelisted bool       `gorm:"default:false" json:"isWhitelisted"`
	LastSeenAt    *time.Time `json:"lastSeenAt,omitempty"`
}

func (User) TableName() string {
	return "users"
}
