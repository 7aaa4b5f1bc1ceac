package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/apperrors"
	"learnhub/database"
	"learnhub/models"
	courseModels "learnhub/models/course"
)

func TestRatingAggregatesDeriveFromActiveRows(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)
	user1 := newUser(t, models.RoleStudent)
	user2 := newUser(t, models.RoleStudent)

	require.NoError(t, db.Create(&courseModels.Rating{UserID: user1.ID, CourseID: course.ID, Rating: 4, IsActive: true}).Error)
	RefreshRatingStats(course.ID)

	got := reloadCourse(t, course.ID)
	assert.Equal(t, 1, got.TotalRatings)
	assert.Equal(t, 4.0, got.AverageRating)

	require.NoError(t, db.Create(&courseModels.Rating{UserID: user2.ID, CourseID: course.ID, Rating: 5, IsActive: true}).Error)
	RefreshRatingStats(course.ID)

	got = reloadCourse(t, course.ID)
	assert.Equal(t, 2, got.TotalRatings)
	assert.Equal(t, 4.5, got.AverageRating)
}

func TestDeactivatedRatingsLeaveTheAverage(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)
	user1 := newUser(t, models.RoleStudent)
	user2 := newUser(t, models.RoleStudent)

	rating1 := courseModels.Rating{UserID: user1.ID, CourseID: course.ID, Rating: 4, IsActive: true}
	require.NoError(t, db.Create(&rating1).Error)
	require.NoError(t, db.Create(&courseModels.Rating{UserID: user2.ID, CourseID: course.ID, Rating: 5, IsActive: true}).Error)
	RefreshRatingStats(course.ID)

	require.NoError(t, db.Model(&rating1).Update("is_active", false).Error)
	RefreshRatingStats(course.ID)

	got := reloadCourse(t, course.ID)
	assert.Equal(t, 1, got.TotalRatings)
	assert.Equal(t, 5.0, got.AverageRating)

	require.NoError(t, db.Model(&courseModels.Rating{}).
		Where("course_id = ?", course.ID).Update("is_active", false).Error)
	RefreshRatingStats(course.ID)

	got = reloadCourse(t, course.ID)
	assert.Equal(t, 0, got.TotalRatings)
	assert.Equal(t, 0.0, got.AverageRating)
}

func TestContentRollupCountsAndSums(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)

	newLesson(t, course.ID, 10, 1)
	middle := newLesson(t, course.ID, 15, 2)
	newLesson(t, course.ID, 5, 3)

	require.NoError(t, RecalcContentStats(db, course.ID))
	got := reloadCourse(t, course.ID)
	assert.Equal(t, 3, got.TotalLessons)
	assert.Equal(t, 30, got.TotalDuration)

	require.NoError(t, db.Unscoped().Delete(&courseModels.Lesson{}, middle.ID).Error)
	require.NoError(t, RecalcContentStats(db, course.ID))

	got = reloadCourse(t, course.ID)
	assert.Equal(t, 2, got.TotalLessons)
	assert.Equal(t, 15, got.TotalDuration)
}

func TestVideoLengthBacksLessonDuration(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)

	// No instructor-set duration; 150s of video rounds to 3 minutes
	lesson := courseModels.Lesson{
		CourseID: course.ID,
		Title:    "Video only",
		Video:    courseModels.MediaRef{URL: "https://cdn.test/v.mp4", PublicID: "vid-1", Duration: 150},
	}
	require.NoError(t, db.Create(&lesson).Error)
	assert.Equal(t, 3, lesson.EffectiveDuration())

	// An explicit duration wins over the video length
	fixed := newLesson(t, course.ID, 7, 2)
	assert.Equal(t, 7, fixed.EffectiveDuration())

	require.NoError(t, RecalcContentStats(db, course.ID))
	got := reloadCourse(t, course.ID)
	assert.Equal(t, 2, got.TotalLessons)
	assert.Equal(t, 10, got.TotalDuration)
}

func TestConcurrentRatingWritesConverge(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)

	const raters = 8
	users := make([]models.User, raters)
	for i := range users {
		users[i] = newUser(t, models.RoleStudent)
	}

	var wg sync.WaitGroup
	for i := 0; i < raters; i++ {
		wg.Add(1)
		go func(user models.User, value int) {
			defer wg.Done()
			err := db.Create(&courseModels.Rating{UserID: user.ID, CourseID: course.ID, Rating: value, IsActive: true}).Error
			if err != nil {
				t.Errorf("rating insert failed: %v", err)
				return
			}
			RefreshRatingStats(course.ID)
		}(users[i], i%5+1)
	}
	wg.Wait()

	// values 1,2,3,4,5,1,2,3 sum to 21; full re-derivation must win every race
	got := reloadCourse(t, course.ID)
	assert.Equal(t, raters, got.TotalRatings)
	assert.Equal(t, 2.6, got.AverageRating)
}

func TestProgressDerivation(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)
	lessons := []courseModels.Lesson{
		newLesson(t, course.ID, 5, 1),
		newLesson(t, course.ID, 5, 2),
		newLesson(t, course.ID, 5, 3),
		newLesson(t, course.ID, 5, 4),
	}
	student := newUser(t, models.RoleStudent)
	newEnrollment(t, student.ID, course.ID)

	complete := func(lessonID uint) {
		require.NoError(t, db.Create(&courseModels.LessonCompletion{
			UserID: student.ID, CourseID: course.ID, LessonID: lessonID,
		}).Error)
	}

	complete(lessons[0].ID)
	complete(lessons[1].ID)
	require.NoError(t, RecalcEnrollmentProgress(db, student.ID, course.ID))

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	assert.Equal(t, 50.0, enrollment.Progress)
	assert.Equal(t, 2, enrollment.CompletedLessons)
	assert.Equal(t, 4, enrollment.TotalLessons)
	assert.Equal(t, courseModels.EnrollmentInProgress, enrollment.Status)

	// Recomputing without new completions changes nothing
	require.NoError(t, RecalcEnrollmentProgress(db, student.ID, course.ID))
	require.NoError(t, db.Where("id = ?", enrollment.ID).First(&enrollment).Error)
	assert.Equal(t, 50.0, enrollment.Progress)

	complete(lessons[2].ID)
	complete(lessons[3].ID)
	require.NoError(t, RecalcEnrollmentProgress(db, student.ID, course.ID))
	require.NoError(t, db.Where("id = ?", enrollment.ID).First(&enrollment).Error)
	assert.Equal(t, 100.0, enrollment.Progress)
	assert.Equal(t, courseModels.EnrollmentCompleted, enrollment.Status)
	require.NotNil(t, enrollment.CompletedAt)
	completedAt := *enrollment.CompletedAt

	// A new lesson lowers the percentage but completion is not taken back
	newLesson(t, course.ID, 5, 5)
	require.NoError(t, RecalcAllEnrollmentProgress(db, course.ID))
	require.NoError(t, db.Where("id = ?", enrollment.ID).First(&enrollment).Error)
	assert.Equal(t, 80.0, enrollment.Progress)
	assert.Equal(t, courseModels.EnrollmentCompleted, enrollment.Status)
	require.NotNil(t, enrollment.CompletedAt)
	assert.Equal(t, completedAt.Unix(), enrollment.CompletedAt.Unix())
}

func TestProgressIgnoresRemovedLessons(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)
	first := newLesson(t, course.ID, 5, 1)
	second := newLesson(t, course.ID, 5, 2)
	newLesson(t, course.ID, 5, 3)
	newLesson(t, course.ID, 5, 4)

	student := newUser(t, models.RoleStudent)
	newEnrollment(t, student.ID, course.ID)
	require.NoError(t, db.Create(&courseModels.LessonCompletion{UserID: student.ID, CourseID: course.ID, LessonID: first.ID}).Error)
	require.NoError(t, db.Create(&courseModels.LessonCompletion{UserID: student.ID, CourseID: course.ID, LessonID: second.ID}).Error)

	require.NoError(t, RecalcEnrollmentProgress(db, student.ID, course.ID))

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	assert.Equal(t, 50.0, enrollment.Progress)

	// Remove a completed lesson; its completion row stays but stops counting
	require.NoError(t, db.Unscoped().Delete(&courseModels.Lesson{}, first.ID).Error)
	require.NoError(t, RecalcEnrollmentProgress(db, student.ID, course.ID))
	require.NoError(t, db.Where("id = ?", enrollment.ID).First(&enrollment).Error)
	assert.Equal(t, 1, enrollment.CompletedLessons)
	assert.Equal(t, 3, enrollment.TotalLessons)
	assert.InDelta(t, 100.0/3.0, enrollment.Progress, 1e-9)

	var orphaned int64
	db.Model(&courseModels.LessonCompletion{}).Where("lesson_id = ?", first.ID).Count(&orphaned)
	assert.Equal(t, int64(1), orphaned)
}

func TestProgressWithNoLessons(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)
	student := newUser(t, models.RoleStudent)
	newEnrollment(t, student.ID, course.ID)

	require.NoError(t, RecalcEnrollmentProgress(db, student.ID, course.ID))

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	assert.Equal(t, 0.0, enrollment.Progress)
	assert.Equal(t, courseModels.EnrollmentEnrolled, enrollment.Status)
}

func TestEnrollmentCountsDerive(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)

	for i := 0; i < 3; i++ {
		student := newUser(t, models.RoleStudent)
		newEnrollment(t, student.ID, course.ID)
	}
	require.NoError(t, RecalcEnrollmentStats(db, course.ID))

	got := reloadCourse(t, course.ID)
	assert.Equal(t, 3, got.TotalEnrollments)
	assert.Equal(t, 3, got.TotalStudents)
}

func TestRetryDrainHealsStaleStats(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)
	user1 := newUser(t, models.RoleStudent)
	user2 := newUser(t, models.RoleStudent)

	require.NoError(t, db.Create(&courseModels.Rating{UserID: user1.ID, CourseID: course.ID, Rating: 4, IsActive: true}).Error)
	require.NoError(t, db.Create(&courseModels.Rating{UserID: user2.ID, CourseID: course.ID, Rating: 5, IsActive: true}).Error)

	// Stale columns stand in for a recompute that failed after its write
	// committed
	require.NoError(t, db.Model(&courseModels.Course{}).Where("id = ?", course.ID).
		Updates(map[string]interface{}{"average_rating": 1.0, "total_ratings": 9}).Error)

	ScheduleRetry(course.ID)
	assert.GreaterOrEqual(t, PendingRetryCount(), 1)

	DrainRetries()
	assert.Equal(t, 0, PendingRetryCount())

	got := reloadCourse(t, course.ID)
	assert.Equal(t, 2, got.TotalRatings)
	assert.Equal(t, 4.5, got.AverageRating)
}

func TestAuditReportsDrift(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)
	newLesson(t, course.ID, 10, 1)

	require.NoError(t, db.Model(&courseModels.Course{}).Where("id = ?", course.ID).
		Updates(map[string]interface{}{"total_lessons": 42, "favorite_count": 7}).Error)

	err := AuditCourseStats(db, course.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsConsistency(err))

	require.NoError(t, RecalcCourseStats(db, course.ID))
	assert.NoError(t, AuditCourseStats(db, course.ID))

	got := reloadCourse(t, course.ID)
	assert.Equal(t, 1, got.TotalLessons)
	assert.Equal(t, 10, got.TotalDuration)
	assert.Equal(t, 0, got.FavoriteCount)
}
