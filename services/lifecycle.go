package services

import (
	"errors"

	"gorm.io/gorm"

	"learnhub/apperrors"
	"learnhub/database"
	"learnhub/models"
	courseModels "learnhub/models/course"
)

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// DeactivateUser soft-deletes an account and cascades: the display name is
// anonymized and profile fields cleared (email and password stay for audit),
// the user's ratings go inactive and their favorites are removed, then every
// touched course is recomputed. Enrollments are history and stay. Courses the
// user instructs are not cascaded; they keep running under the deactivated
// owner.
func DeactivateUser(userID uint) error {
	db := database.Database.Db

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("User not found!")
		}
		return err
	}

	var ratedCourseIDs []uint
	if err := db.Model(&courseModels.Rating{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Pluck("course_id", &ratedCourseIDs).Error; err != nil {
		return err
	}
	var favoriteCourseIDs []uint
	if err := db.Model(&courseModels.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("course_id", &favoriteCourseIDs).Error; err != nil {
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_active":     false,
		"name":          "Deleted User",
		"bio":           "",
		"headline":      "",
		"profile_image": "",
	}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.User{}, userID).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Model(&courseModels.Rating{}).Where("user_id = ?", userID).Update("is_active", false).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&courseModels.Favorite{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	for _, id := range uniqueIDs(ratedCourseIDs) {
		RefreshRatingStats(id)
	}
	for _, id := range uniqueIDs(favoriteCourseIDs) {
		RefreshFavoriteStats(id)
	}

	return nil
}

// RestoreUser reactivates a soft-deleted account. Ratings that were
// deactivated by the cascade stay inactive; the user can see them but not
// resubmit, same as any other deactivated rating.
func RestoreUser(userID uint) error {
	db := database.Database.Db

	var user models.User
	if err := db.Unscoped().First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("User not found!")
		}
		return err
	}
	if !user.DeletedAt.Valid {
		return apperrors.NewConflict("User account is not deactivated!")
	}

	return db.Unscoped().Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"deleted_at": nil, "is_active": true}).Error
}

// SoftDeleteCourse hides a course from every public read and mutation and
// removes it from every user's favorites. Ratings and enrollments survive
// untouched and the stat columns freeze at their last values until a restore
// re-derives them.
func SoftDeleteCourse(courseID uint) error {
	db := database.Database.Db

	var course courseModels.Course
	if err := db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Course not found!")
		}
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(&courseModels.Favorite{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&courseModels.Course{}, courseID).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	RefreshFavoriteStats(courseID)
	return nil
}

// RestoreCourse brings a soft-deleted course back. Stats are re-derived
// while the course is still hidden so it never reappears with stale numbers.
func RestoreCourse(courseID uint) error {
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Unscoped().First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("Course not found!")
		}
		return err
	}
	if !course.DeletedAt.Valid {
		return apperrors.NewConflict("Course is not deleted!")
	}

	return WithCourseLock(courseID, func() error {
		if err := RecalcCourseStats(db, courseID); err != nil {
			return err
		}
		if err := RecalcAllEnrollmentProgress(db, courseID); err != nil {
			return err
		}
		return db.Unscoped().Model(&courseModels.Course{}).Where("id = ?", courseID).
			Update("deleted_at", nil).Error
	})
}

// PurgeCourse permanently removes a soft-deleted course and every row that
// references it. It returns the media public IDs that were attached so the
// caller can fire storage cleanup after the transaction is gone.
func PurgeCourse(courseID uint) ([]string, error) {
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Unscoped().First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Course not found!")
		}
		return nil, err
	}
	if !course.DeletedAt.Valid {
		return nil, apperrors.NewConflict("Soft delete the course before purging it!")
	}

	var lessons []courseModels.Lesson
	if err := db.Where("course_id = ?", courseID).Find(&lessons).Error; err != nil {
		return nil, err
	}
	lessonIDs := make([]uint, 0, len(lessons))
	publicIDs := make([]string, 0, len(lessons)+2)
	if course.Thumbnail.PublicID != "" {
		publicIDs = append(publicIDs, course.Thumbnail.PublicID)
	}
	if course.PromoVideo.PublicID != "" {
		publicIDs = append(publicIDs, course.PromoVideo.PublicID)
	}
	for i := range lessons {
		lessonIDs = append(lessonIDs, lessons[i].ID)
		if lessons[i].Video.PublicID != "" {
			publicIDs = append(publicIDs, lessons[i].Video.PublicID)
		}
	}
	if len(lessonIDs) > 0 {
		var resources []courseModels.Resource
		if err := db.Where("lesson_id IN ?", lessonIDs).Find(&resources).Error; err != nil {
			return nil, err
		}
		for i := range resources {
			if resources[i].PublicID != "" {
				publicIDs = append(publicIDs, resources[i].PublicID)
			}
		}
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if len(lessonIDs) > 0 {
		if err := tx.Unscoped().Where("lesson_id IN ?", lessonIDs).Delete(&courseModels.Resource{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(&courseModels.LessonCompletion{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(&courseModels.Lesson{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(&courseModels.Rating{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(&courseModels.Favorite{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(&courseModels.Enrollment{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(&courseModels.CertificateRequest{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(&courseModels.Certificate{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Unscoped().Delete(&courseModels.Course{}, courseID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return publicIDs, nil
}
