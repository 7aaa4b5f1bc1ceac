package course

import "gorm.io/gorm"

// Lesson is one unit of course content. Lessons are hard-deleted; removal
// goes through Unscoped so the row is really gone.
type Lesson struct {
	gorm.Model
	CourseID    uint       `json:"course_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Content     string     `json:"content" gorm:"type:text"`
	Video       MediaRef   `json:"video" gorm:"embedded;embeddedPrefix:video_"`
	Duration    int        `json:"duration" gorm:"default:0"` // minutes, set by the instructor
	OrderIndex  int        `json:"order_index" gorm:"default:0"`
	IsFree      bool       `json:"is_free" gorm:"default:false"` // previewable without enrollment
	IsPublished bool       `json:"is_published" gorm:"default:true"`
	Resources   []Resource `json:"resources,omitempty" gorm:"foreignKey:LessonID"`
}

// EffectiveDuration is the lesson length used for course rollups: the
// instructor-set duration when present, otherwise the uploaded video's
// length rounded to whole minutes.
func (l *Lesson) EffectiveDuration() int {
	if l.Duration > 0 {
		return l.Duration
	}
	if l.Video.Duration > 0 {
		return int(l.Video.Duration/60 + 0.5)
	}
	return 0
}

// Resource is a downloadable or linked attachment on a lesson.
type Resource struct {
	gorm.Model
	LessonID   uint    `json:"lesson_id" gorm:"index;not null"`
	Name       string  `json:"name" gorm:"not null"`
	Type       string  `json:"type" gorm:"default:'LINK'"` // PDF, VIDEO, IMAGE, DOCUMENT, LINK
	URL        string  `json:"url" gorm:"default:''"`
	PublicID   string  `json:"public_id" gorm:"default:''"`
	Size       int64   `json:"size" gorm:"default:0"`     // bytes
	Duration   float64 `json:"duration" gorm:"default:0"` // seconds, for audio or video resources
	OrderIndex int     `json:"order_index" gorm:"default:0"`
}
