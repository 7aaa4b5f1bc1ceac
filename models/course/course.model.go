package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"learnhub/models"
)

// MediaRef points at an uploaded asset on the media backend.
type MediaRef struct {
	URL      string  `json:"url" gorm:"default:''"`
	PublicID string  `json:"public_id" gorm:"default:''"`
	Duration float64 `json:"duration" gorm:"default:0"` // seconds, as reported by the backend
}

// Course represents a learning course. The stats block (TotalLessons through
// TotalEnrollments) is derived from the source tables and written only by the
// recompute service; handlers never touch these columns directly.
type Course struct {
	gorm.Model
	InstructorID     uint           `json:"instructor_id" gorm:"index;not null"`
	Title            string         `json:"title" gorm:"not null"`
	Description      string         `json:"description" gorm:"type:text"`
	Category         string         `json:"category" gorm:"index;default:''"`
	Level            string         `json:"level" gorm:"default:'ALL'"` // BEGINNER, INTERMEDIATE, ADVANCED, ALL
	Price            float64        `json:"price" gorm:"default:0"`
	Tags             datatypes.JSON `json:"tags"`
	Thumbnail        MediaRef       `json:"thumbnail" gorm:"embedded;embeddedPrefix:thumbnail_"`
	PromoVideo       MediaRef       `json:"promo_video" gorm:"embedded;embeddedPrefix:promo_"`
	IsPublished      bool           `json:"is_published" gorm:"default:false"`
	TotalLessons     int            `json:"total_lessons" gorm:"default:0"`
	TotalDuration    int            `json:"total_duration" gorm:"default:0"` // minutes
	AverageRating    float64        `json:"average_rating" gorm:"default:0"` // mean of active ratings, one decimal
	TotalRatings     int            `json:"total_ratings" gorm:"default:0"`
	FavoriteCount    int            `json:"favorite_count" gorm:"default:0"`
	TotalStudents    int            `json:"total_students" gorm:"default:0"` // distinct enrolled users
	TotalEnrollments int            `json:"total_enrollments" gorm:"default:0"`
	Instructor       models.User    `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	Lessons          []Lesson       `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`
}
