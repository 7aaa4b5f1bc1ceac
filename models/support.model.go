package models

import "gorm.io/gorm"

type SupportTicket struct {
	gorm.Model
	UserID      uint   `json:"user_id" gorm:"index;not null"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Status      string `json:"status" gorm:"default:'open'"`       // open, in_progress, resolved, closed
	Priority    string `json:"priority" gorm:"default:'medium'"`   // low, medium, high
	Category    string `json:"category" gorm:"default:'general'"`  // general, course, payment, technical
	AdminReply  string `json:"admin_reply" gorm:"type:text;default:''"`
	User        User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
