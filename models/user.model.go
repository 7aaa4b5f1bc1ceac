package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

type User struct {
	gorm.Model
	Name         string     `json:"name" gorm:"default:''"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	Password     string     `json:"-" gorm:"not null"`
	Role         string     `json:"role" gorm:"default:'STUDENT'"` // STUDENT, INSTRUCTOR, ADMIN
	Bio          string     `json:"bio" gorm:"type:text;default:''"`
	ProfileImage string     `json:"profile_image" gorm:"default:''"`
	Headline     string     `json:"headline" gorm:"default:''"` // short tagline shown on instructor cards
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastLogin    *time.Time `json:"last_login"`
}

// Sanitize strips fields that must never leave the server.
func (u *User) Sanitize() {
	u.Password = ""
}
