package course

import (
	"gorm.io/gorm"

	"learnhub/models"
)

// Rating is a user's rating of a course. The (user, course) pair is unique
// for the lifetime of the pair: deactivation flips IsActive instead of
// deleting, and a deactivated pair cannot rate again.
type Rating struct {
	gorm.Model
	UserID   uint        `json:"user_id" gorm:"index;not null;uniqueIndex:idx_ratings_user_course"`
	CourseID uint        `json:"course_id" gorm:"index;not null;uniqueIndex:idx_ratings_user_course"`
	Rating   int         `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"` // 1-5 rating
	Comment  string      `json:"comment" gorm:"type:text;default:''"`
	IsActive bool        `json:"is_active" gorm:"default:true"`
	User     models.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
