package course

import (
	"time"

	"gorm.io/gorm"

	"learnhub/models"
)

const (
	EnrollmentEnrolled   = "ENROLLED"
	EnrollmentInProgress = "IN_PROGRESS"
	EnrollmentCompleted  = "COMPLETED"
)

// Enrollment tracks a user's enrollment in a course with progress. Progress
// is always derived on the server from LessonCompletion rows against the
// current lesson set; it is never accepted from a client.
type Enrollment struct {
	gorm.Model
	UserID           uint        `json:"user_id" gorm:"index;not null;uniqueIndex:idx_enrollments_user_course"`
	CourseID         uint        `json:"course_id" gorm:"index;not null;uniqueIndex:idx_enrollments_user_course"`
	Status           string      `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, IN_PROGRESS, COMPLETED
	Progress         float64     `json:"progress" gorm:"default:0"`        // completion percentage (0-100)
	CompletedLessons int         `json:"completed_lessons" gorm:"default:0"`
	TotalLessons     int         `json:"total_lessons" gorm:"default:0"` // lesson count at last recompute
	EnrolledAt       time.Time   `json:"enrolled_at"`
	LastAccessedAt   *time.Time  `json:"last_accessed_at"`
	CompletedAt      *time.Time  `json:"completed_at"`
	User             models.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course           Course      `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// LessonCompletion records that a user finished a lesson. Rows survive
// lesson removal; progress derivation intersects them with the live lesson
// set instead of cascading deletes.
type LessonCompletion struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index;not null;uniqueIndex:idx_completions_user_lesson"`
	CourseID uint `json:"course_id" gorm:"index;not null"`
	LessonID uint `json:"lesson_id" gorm:"index;not null;uniqueIndex:idx_completions_user_lesson"`
}
