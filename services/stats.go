package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"learnhub/apperrors"
	"learnhub/database"
	courseModels "learnhub/models/course"
)

// Every derived column on Course is written by this package only, and always
// by full re-derivation from the source tables. The per-course mutex keeps a
// derive from being interleaved with another derive's write-back; without it
// an older derivation could land last and persist stale numbers.

var courseLocks sync.Map

func courseLock(courseID uint) *sync.Mutex {
	mu, _ := courseLocks.LoadOrStore(courseID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// WithCourseLock runs fn while holding the mutex for the given course.
// Mutations that recompute inside their own transaction (the lesson tree)
// wrap the whole transaction in this.
func WithCourseLock(courseID uint, fn func() error) error {
	mu := courseLock(courseID)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func deriveContent(db *gorm.DB, courseID uint) (lessons int, duration int, err error) {
	var rows []courseModels.Lesson
	if err := db.Where("course_id = ?", courseID).Find(&rows).Error; err != nil {
		return 0, 0, err
	}
	for i := range rows {
		duration += rows[i].EffectiveDuration()
	}
	return len(rows), duration, nil
}

func deriveRatings(db *gorm.DB, courseID uint) (count int64, average float64, err error) {
	var result struct {
		Count   int64
		Average float64
	}
	err = db.Model(&courseModels.Rating{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("course_id = ? AND is_active = ?", courseID, true).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Count, math.Round(result.Average*10) / 10, nil
}

func deriveFavorites(db *gorm.DB, courseID uint) (int64, error) {
	var count int64
	err := db.Model(&courseModels.Favorite{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func deriveEnrollments(db *gorm.DB, courseID uint) (total int64, students int64, err error) {
	if err = db.Model(&courseModels.Enrollment{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = db.Model(&courseModels.Enrollment{}).Where("course_id = ?", courseID).Distinct("user_id").Count(&students).Error
	return total, students, err
}

// statsUpdate writes derived columns back to the course row. Unscoped so a
// restore can refresh a still-hidden course before exposing it.
func statsUpdate(db *gorm.DB, courseID uint, values map[string]interface{}) error {
	return db.Unscoped().Model(&courseModels.Course{}).Where("id = ?", courseID).Updates(values).Error
}

// RecalcContentStats re-derives total_lessons and total_duration. Lesson
// mutations call this on their own transaction so the rollup lands with the
// mutation.
func RecalcContentStats(db *gorm.DB, courseID uint) error {
	lessons, duration, err := deriveContent(db, courseID)
	if err != nil {
		return err
	}
	return statsUpdate(db, courseID, map[string]interface{}{
		"total_lessons":  lessons,
		"total_duration": duration,
	})
}

// RecalcRatingStats re-derives average_rating and total_ratings from the
// active ratings.
func RecalcRatingStats(db *gorm.DB, courseID uint) error {
	count, average, err := deriveRatings(db, courseID)
	if err != nil {
		return err
	}
	return statsUpdate(db, courseID, map[string]interface{}{
		"average_rating": average,
		"total_ratings":  count,
	})
}

// RecalcFavoriteStats re-derives favorite_count.
func RecalcFavoriteStats(db *gorm.DB, courseID uint) error {
	count, err := deriveFavorites(db, courseID)
	if err != nil {
		return err
	}
	return statsUpdate(db, courseID, map[string]interface{}{"favorite_count": count})
}

// RecalcEnrollmentStats re-derives total_enrollments and total_students.
func RecalcEnrollmentStats(db *gorm.DB, courseID uint) error {
	total, students, err := deriveEnrollments(db, courseID)
	if err != nil {
		return err
	}
	return statsUpdate(db, courseID, map[string]interface{}{
		"total_enrollments": total,
		"total_students":    students,
	})
}

// RecalcCourseStats re-derives every stat column for a course.
func RecalcCourseStats(db *gorm.DB, courseID uint) error {
	if err := RecalcContentStats(db, courseID); err != nil {
		return err
	}
	if err := RecalcRatingStats(db, courseID); err != nil {
		return err
	}
	if err := RecalcFavoriteStats(db, courseID); err != nil {
		return err
	}
	return RecalcEnrollmentStats(db, courseID)
}

// RecalcEnrollmentProgress re-derives one enrollment's progress against the
// current lesson set. Completions whose lesson was removed simply stop
// counting. COMPLETED is sticky: a course that shrinks after completion does
// not take the completion back.
func RecalcEnrollmentProgress(db *gorm.DB, userID uint, courseID uint) error {
	var totalLessons int64
	if err := db.Model(&courseModels.Lesson{}).Where("course_id = ?", courseID).Count(&totalLessons).Error; err != nil {
		return err
	}

	liveLessons := db.Model(&courseModels.Lesson{}).Select("id").Where("course_id = ?", courseID)
	var completed int64
	if err := db.Model(&courseModels.LessonCompletion{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Where("lesson_id IN (?)", liveLessons).
		Count(&completed).Error; err != nil {
		return err
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	enrollment.CompletedLessons = int(completed)
	enrollment.TotalLessons = int(totalLessons)

	progress := 0.0
	if totalLessons > 0 {
		progress = float64(completed) / float64(totalLessons) * 100
		if progress > 100 {
			progress = 100
		}
	}
	enrollment.Progress = progress

	now := time.Now()
	switch {
	case enrollment.Status == courseModels.EnrollmentCompleted:
		// sticky
	case progress >= 100:
		enrollment.Status = courseModels.EnrollmentCompleted
		enrollment.CompletedAt = &now
	case progress > 0:
		enrollment.Status = courseModels.EnrollmentInProgress
	}

	return db.Save(&enrollment).Error
}

// RecalcAllEnrollmentProgress re-derives progress for every enrollment of a
// course. Lesson mutations change everyone's denominator, so they trigger
// this after commit.
func RecalcAllEnrollmentProgress(db *gorm.DB, courseID uint) error {
	var userIDs []uint
	if err := db.Model(&courseModels.Enrollment{}).Where("course_id = ?", courseID).Pluck("user_id", &userIDs).Error; err != nil {
		return err
	}
	for _, userID := range userIDs {
		if err := RecalcEnrollmentProgress(db, userID, courseID); err != nil {
			return err
		}
	}
	return nil
}

// AuditCourseStats re-derives every stat and reports drift without healing
// it. The nightly sweep uses it to log how often the retry path was needed.
func AuditCourseStats(db *gorm.DB, courseID uint) error {
	var course courseModels.Course
	if err := db.Unscoped().First(&course, courseID).Error; err != nil {
		return err
	}

	lessons, duration, err := deriveContent(db, courseID)
	if err != nil {
		return err
	}
	ratingCount, average, err := deriveRatings(db, courseID)
	if err != nil {
		return err
	}
	favorites, err := deriveFavorites(db, courseID)
	if err != nil {
		return err
	}
	enrollments, students, err := deriveEnrollments(db, courseID)
	if err != nil {
		return err
	}

	var drift []string
	if course.TotalLessons != lessons {
		drift = append(drift, fmt.Sprintf("total_lessons %d should be %d", course.TotalLessons, lessons))
	}
	if course.TotalDuration != duration {
		drift = append(drift, fmt.Sprintf("total_duration %d should be %d", course.TotalDuration, duration))
	}
	if course.TotalRatings != int(ratingCount) {
		drift = append(drift, fmt.Sprintf("total_ratings %d should be %d", course.TotalRatings, ratingCount))
	}
	if course.AverageRating != average {
		drift = append(drift, fmt.Sprintf("average_rating %.1f should be %.1f", course.AverageRating, average))
	}
	if course.FavoriteCount != int(favorites) {
		drift = append(drift, fmt.Sprintf("favorite_count %d should be %d", course.FavoriteCount, favorites))
	}
	if course.TotalEnrollments != int(enrollments) {
		drift = append(drift, fmt.Sprintf("total_enrollments %d should be %d", course.TotalEnrollments, enrollments))
	}
	if course.TotalStudents != int(students) {
		drift = append(drift, fmt.Sprintf("total_students %d should be %d", course.TotalStudents, students))
	}

	if len(drift) > 0 {
		return apperrors.NewConsistency(fmt.Sprintf("course %d stats drift: %s", courseID, strings.Join(drift, ", ")))
	}
	return nil
}

// Retry registry. A recompute that fails after its mutation committed is
// queued here; the scheduler drains the queue until the derive succeeds.

var (
	retryMu      sync.Mutex
	pendingRetry = make(map[uint]struct{})
)

// ScheduleRetry queues a course for a full recompute.
func ScheduleRetry(courseID uint) {
	retryMu.Lock()
	pendingRetry[courseID] = struct{}{}
	retryMu.Unlock()
}

// PendingRetryCount reports how many courses are waiting for a recompute.
func PendingRetryCount() int {
	retryMu.Lock()
	defer retryMu.Unlock()
	return len(pendingRetry)
}

// DrainRetries runs the full recompute for every queued course. Courses that
// fail again are re-queued for the next drain.
func DrainRetries() {
	retryMu.Lock()
	ids := make([]uint, 0, len(pendingRetry))
	for id := range pendingRetry {
		ids = append(ids, id)
	}
	pendingRetry = make(map[uint]struct{})
	retryMu.Unlock()

	for _, id := range ids {
		err := WithCourseLock(id, func() error {
			if err := RecalcCourseStats(database.Database.Db, id); err != nil {
				return err
			}
			return RecalcAllEnrollmentProgress(database.Database.Db, id)
		})
		if err != nil {
			log.Printf("[STATS] Retry recompute failed for course %d: %v", id, err)
			ScheduleRetry(id)
		}
	}
}

// refresh wraps a post-commit recompute: serialize, log, queue for retry on
// failure. The caller's mutation already committed, so the caller still
// reports success either way.
func refresh(courseID uint, what string, fn func(db *gorm.DB) error) {
	err := WithCourseLock(courseID, func() error {
		return fn(database.Database.Db)
	})
	if err != nil {
		log.Printf("[STATS] %s recompute failed for course %d: %v", what, courseID, err)
		ScheduleRetry(courseID)
	}
}

// RefreshRatingStats recomputes rating aggregates after a rating mutation
// committed.
func RefreshRatingStats(courseID uint) {
	refresh(courseID, "Rating", func(db *gorm.DB) error {
		return RecalcRatingStats(db, courseID)
	})
}

// RefreshFavoriteStats recomputes the favorite count after a favorite
// mutation committed.
func RefreshFavoriteStats(courseID uint) {
	refresh(courseID, "Favorite", func(db *gorm.DB) error {
		return RecalcFavoriteStats(db, courseID)
	})
}

// RefreshEnrollmentStats recomputes enrollment counts after an enrollment
// committed.
func RefreshEnrollmentStats(courseID uint) {
	refresh(courseID, "Enrollment", func(db *gorm.DB) error {
		return RecalcEnrollmentStats(db, courseID)
	})
}

// RefreshCourseProgress re-derives every enrollment's progress after a
// lesson mutation changed the course's lesson set.
func RefreshCourseProgress(courseID uint) {
	refresh(courseID, "Progress", func(db *gorm.DB) error {
		return RecalcAllEnrollmentProgress(db, courseID)
	})
}

// RefreshCourseStats runs the full recompute, used on course restore and by
// the nightly sweep.
func RefreshCourseStats(courseID uint) {
	refresh(courseID, "Course", func(db *gorm.DB) error {
		if err := RecalcCourseStats(db, courseID); err != nil {
			return err
		}
		return RecalcAllEnrollmentProgress(db, courseID)
	})
}

// NightlySweep audits and heals every live course. Drift here means a retry
// was lost (for example a restart with a non-empty queue), so it is logged
// before healing.
func NightlySweep() {
	db := database.Database.Db

	var courseIDs []uint
	if err := db.Model(&courseModels.Course{}).Pluck("id", &courseIDs).Error; err != nil {
		log.Printf("[STATS] Nightly sweep could not list courses: %v", err)
		return
	}

	healed := 0
	for _, id := range courseIDs {
		if err := AuditCourseStats(db, id); err != nil {
			if apperrors.IsConsistency(err) {
				log.Printf("[STATS] %v", err)
			}
			healed++
		}
		RefreshCourseStats(id)
	}

	log.Printf("[STATS] Nightly sweep finished: %d courses, %d with drift", len(courseIDs), healed)
}
