package course

import "gorm.io/gorm"

// Favorite marks a course as favorited by a user. Removal is a real delete
// (Unscoped) so the unique pair can be re-created by a later toggle; the
// course_id index serves the course-to-users reverse lookup.
type Favorite struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"index;not null;uniqueIndex:idx_favorites_user_course"`
	CourseID uint   `json:"course_id" gorm:"index;not null;uniqueIndex:idx_favorites_user_course"`
	Course   Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}
