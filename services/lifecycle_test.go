package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"learnhub/apperrors"
	"learnhub/database"
	"learnhub/models"
	courseModels "learnhub/models/course"
)

func TestDeactivateUserCascades(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	courseX := newCourse(t, instructor.ID)
	courseY := newCourse(t, instructor.ID)
	student := newUser(t, models.RoleStudent)

	require.NoError(t, db.Create(&courseModels.Rating{UserID: student.ID, CourseID: courseX.ID, Rating: 5, IsActive: true}).Error)
	require.NoError(t, db.Create(&courseModels.Favorite{UserID: student.ID, CourseID: courseX.ID}).Error)
	require.NoError(t, db.Create(&courseModels.Favorite{UserID: student.ID, CourseID: courseY.ID}).Error)
	newEnrollment(t, student.ID, courseX.ID)
	RefreshRatingStats(courseX.ID)
	RefreshFavoriteStats(courseX.ID)
	RefreshFavoriteStats(courseY.ID)
	RefreshEnrollmentStats(courseX.ID)

	require.Equal(t, 1, reloadCourse(t, courseX.ID).FavoriteCount)

	require.NoError(t, DeactivateUser(student.ID))

	// Hidden from the default scope, visible unscoped
	err := db.First(&models.User{}, student.ID).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	var gone models.User
	require.NoError(t, db.Unscoped().First(&gone, student.ID).Error)
	assert.True(t, gone.DeletedAt.Valid)
	assert.False(t, gone.IsActive)
	assert.Equal(t, "Deleted User", gone.Name)
	assert.Empty(t, gone.Bio)
	assert.Empty(t, gone.ProfileImage)
	assert.Equal(t, student.Email, gone.Email)

	var favorites int64
	db.Unscoped().Model(&courseModels.Favorite{}).Where("user_id = ?", student.ID).Count(&favorites)
	assert.Equal(t, int64(0), favorites)

	var rating courseModels.Rating
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, courseX.ID).First(&rating).Error)
	assert.False(t, rating.IsActive)

	// Enrollments are history; they survive the cascade
	var enrollments int64
	db.Model(&courseModels.Enrollment{}).Where("user_id = ?", student.ID).Count(&enrollments)
	assert.Equal(t, int64(1), enrollments)

	gotX := reloadCourse(t, courseX.ID)
	assert.Equal(t, 0, gotX.TotalRatings)
	assert.Equal(t, 0.0, gotX.AverageRating)
	assert.Equal(t, 0, gotX.FavoriteCount)
	assert.Equal(t, 1, gotX.TotalEnrollments)

	gotY := reloadCourse(t, courseY.ID)
	assert.Equal(t, 0, gotY.FavoriteCount)
}

func TestDeactivateUserNotFound(t *testing.T) {
	err := DeactivateUser(999999)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRestoreUser(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)
	student := newUser(t, models.RoleStudent)
	originalName := student.Name

	require.NoError(t, db.Create(&courseModels.Favorite{UserID: student.ID, CourseID: course.ID}).Error)
	require.NoError(t, DeactivateUser(student.ID))

	require.NoError(t, RestoreUser(student.ID))

	var restored models.User
	require.NoError(t, db.First(&restored, student.ID).Error)
	assert.True(t, restored.IsActive)
	assert.False(t, restored.DeletedAt.Valid)

	// The anonymized profile and cleared favorites are not brought back
	assert.Equal(t, "Deleted User", restored.Name)
	assert.NotEqual(t, originalName, restored.Name)
	var favorites int64
	db.Model(&courseModels.Favorite{}).Where("user_id = ?", student.ID).Count(&favorites)
	assert.Equal(t, int64(0), favorites)

	err := RestoreUser(student.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	err = RestoreUser(999999)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSoftDeleteCourseCascades(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)
	newLesson(t, course.ID, 10, 1)
	student := newUser(t, models.RoleStudent)

	require.NoError(t, db.Create(&courseModels.Rating{UserID: student.ID, CourseID: course.ID, Rating: 4, IsActive: true}).Error)
	require.NoError(t, db.Create(&courseModels.Favorite{UserID: student.ID, CourseID: course.ID}).Error)
	newEnrollment(t, student.ID, course.ID)
	require.NoError(t, RecalcCourseStats(db, course.ID))
	require.Equal(t, 1, reloadCourse(t, course.ID).FavoriteCount)

	require.NoError(t, SoftDeleteCourse(course.ID))

	err := db.First(&courseModels.Course{}, course.ID).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	var favorites int64
	db.Unscoped().Model(&courseModels.Favorite{}).Where("course_id = ?", course.ID).Count(&favorites)
	assert.Equal(t, int64(0), favorites)

	// Ratings and enrollments stay for a possible restore
	var ratings, enrollments int64
	db.Model(&courseModels.Rating{}).Where("course_id = ?", course.ID).Count(&ratings)
	db.Model(&courseModels.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollments)
	assert.Equal(t, int64(1), ratings)
	assert.Equal(t, int64(1), enrollments)

	got := reloadCourse(t, course.ID)
	assert.True(t, got.DeletedAt.Valid)
	assert.Equal(t, 0, got.FavoriteCount)
	assert.Equal(t, 1, got.TotalRatings)
	assert.Equal(t, 1, got.TotalEnrollments)

	// A hidden course cannot be deleted again
	err = SoftDeleteCourse(course.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRestoreCourseRederivesStats(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := newCourse(t, instructor.ID)
	newLesson(t, course.ID, 20, 1)
	student := newUser(t, models.RoleStudent)
	require.NoError(t, db.Create(&courseModels.Rating{UserID: student.ID, CourseID: course.ID, Rating: 4, IsActive: true}).Error)
	newEnrollment(t, student.ID, course.ID)

	require.NoError(t, SoftDeleteCourse(course.ID))

	// Stale numbers written while the course is hidden must not survive the
	// restore
	require.NoError(t, db.Unscoped().Model(&courseModels.Course{}).Where("id = ?", course.ID).
		Updates(map[string]interface{}{"total_ratings": 99, "average_rating": 1.0, "total_lessons": 0}).Error)

	require.NoError(t, RestoreCourse(course.ID))

	var restored courseModels.Course
	require.NoError(t, db.First(&restored, course.ID).Error)
	assert.Equal(t, 1, restored.TotalRatings)
	assert.Equal(t, 4.0, restored.AverageRating)
	assert.Equal(t, 1, restored.TotalLessons)
	assert.Equal(t, 20, restored.TotalDuration)
	assert.Equal(t, 1, restored.TotalEnrollments)

	err := RestoreCourse(course.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestPurgeCourseRemovesEverything(t *testing.T) {
	db := database.Database.Db
	instructor := newUser(t, models.RoleInstructor)
	course := courseModels.Course{
		InstructorID: instructor.ID,
		Title:        "Purge target",
		IsPublished:  true,
		Thumbnail:    courseModels.MediaRef{URL: "https://cdn.test/t.jpg", PublicID: "thumb-1"},
		PromoVideo:   courseModels.MediaRef{URL: "https://cdn.test/p.mp4", PublicID: "promo-1"},
	}
	require.NoError(t, db.Create(&course).Error)

	lesson := courseModels.Lesson{
		CourseID:   course.ID,
		Title:      "Lesson",
		Video:      courseModels.MediaRef{URL: "https://cdn.test/v.mp4", PublicID: "vid-1"},
		Duration:   10,
		OrderIndex: 1,
	}
	require.NoError(t, db.Create(&lesson).Error)
	require.NoError(t, db.Create(&courseModels.Resource{
		LessonID: lesson.ID, Name: "Slides", Type: "PDF", PublicID: "res-1",
	}).Error)

	student := newUser(t, models.RoleStudent)
	enrollment := newEnrollment(t, student.ID, course.ID)
	require.NoError(t, db.Create(&courseModels.LessonCompletion{UserID: student.ID, CourseID: course.ID, LessonID: lesson.ID}).Error)
	require.NoError(t, db.Create(&courseModels.Rating{UserID: student.ID, CourseID: course.ID, Rating: 5, IsActive: true}).Error)
	require.NoError(t, db.Create(&courseModels.Favorite{UserID: student.ID, CourseID: course.ID}).Error)
	require.NoError(t, db.Create(&courseModels.CertificateRequest{
		UserID: student.ID, CourseID: course.ID, EnrollmentID: enrollment.ID,
		Status: courseModels.CertificatePending, RequestedAt: time.Now(),
	}).Error)

	// Purging a live course is refused
	_, err := PurgeCourse(course.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	require.NoError(t, SoftDeleteCourse(course.ID))

	publicIDs, err := PurgeCourse(course.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"thumb-1", "promo-1", "vid-1", "res-1"}, publicIDs)

	count := func(model interface{}, query string, args ...interface{}) int64 {
		var n int64
		db.Unscoped().Model(model).Where(query, args...).Count(&n)
		return n
	}
	assert.Equal(t, int64(0), count(&courseModels.Course{}, "id = ?", course.ID))
	assert.Equal(t, int64(0), count(&courseModels.Lesson{}, "course_id = ?", course.ID))
	assert.Equal(t, int64(0), count(&courseModels.Resource{}, "lesson_id = ?", lesson.ID))
	assert.Equal(t, int64(0), count(&courseModels.LessonCompletion{}, "course_id = ?", course.ID))
	assert.Equal(t, int64(0), count(&courseModels.Rating{}, "course_id = ?", course.ID))
	assert.Equal(t, int64(0), count(&courseModels.Favorite{}, "course_id = ?", course.ID))
	assert.Equal(t, int64(0), count(&courseModels.Enrollment{}, "course_id = ?", course.ID))
	assert.Equal(t, int64(0), count(&courseModels.CertificateRequest{}, "course_id = ?", course.ID))
}
