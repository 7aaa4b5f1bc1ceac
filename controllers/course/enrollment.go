package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"learnhub/apperrors"
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	"learnhub/services"
	"learnhub/utils"
	courseValidator "learnhub/validators/course"
)

// EnrollInCourse enrolls the caller in a published course.
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	course, err := liveCourse(courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if course.InstructorID == userID {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "You cannot enroll in your own course!", nil)
	}

	db := database.Database.Db

	var existing courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", nil)
	}

	enrollment := courseModels.Enrollment{
		UserID:       userID,
		CourseID:     courseID,
		Status:       courseModels.EnrollmentEnrolled,
		Progress:     0,
		TotalLessons: course.TotalLessons,
		EnrolledAt:   time.Now(),
	}
	if err := db.Create(&enrollment).Error; err != nil {
		// The unique pair catches a concurrent double enroll
		if apperrors.Duplicate(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	services.RefreshEnrollmentStats(courseID)

	var user models.User
	if err := db.First(&user, userID).Error; err == nil {
		utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", enrollment)
}

// CompleteLesson marks a lesson as done for the caller. Completing the same
// lesson twice is a no-op; progress is always re-derived on the server.
func CompleteLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	lessonID := c.Locals("lessonID").(uint)

	db := database.Database.Db

	var lesson courseModels.Lesson
	if err := db.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	if _, err := liveCourse(lesson.CourseID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, lesson.CourseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enroll in the course before completing lessons!", nil)
	}

	var existing courseModels.LessonCompletion
	if err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&existing).Error; err != nil {
		completion := courseModels.LessonCompletion{
			UserID:   userID,
			CourseID: lesson.CourseID,
			LessonID: lessonID,
		}
		if err := db.Create(&completion).Error; err != nil && !apperrors.Duplicate(err) {
			return middleware.ErrorResponse(c, err)
		}
	}

	// Progress is per (student, course); no cross-user serialization needed
	if err := services.RecalcEnrollmentProgress(db, userID, lesson.CourseID); err != nil {
		log.Printf("[STATS] Progress recompute failed for user %d course %d: %v", userID, lesson.CourseID, err)
		services.ScheduleRetry(lesson.CourseID)
	}

	now := time.Now()
	db.Model(&courseModels.Enrollment{}).Where("id = ?", enrollment.ID).Update("last_accessed_at", now)

	if err := db.Where("id = ?", enrollment.ID).First(&enrollment).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed!", enrollment)
}

// GetLearnView returns the full course content for an enrolled student with
// per-lesson completion flags.
func GetLearnView(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	if _, err := liveCourse(courseID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	db := database.Database.Db

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enroll in the course to access its content!", nil)
	}

	var course courseModels.Course
	if err := db.
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc, created_at asc, id asc")
		}).
		Preload("Lessons.Resources", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc, created_at asc, id asc")
		}).
		First(&course, courseID).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var completedIDs []uint
	db.Model(&courseModels.LessonCompletion{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Pluck("lesson_id", &completedIDs)
	completed := make(map[uint]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}

	type LessonView struct {
		courseModels.Lesson
		Completed bool `json:"completed"`
	}
	lessons := make([]LessonView, len(course.Lessons))
	for i, lesson := range course.Lessons {
		lessons[i] = LessonView{Lesson: lesson, Completed: completed[lesson.ID]}
	}

	now := time.Now()
	db.Model(&courseModels.Enrollment{}).Where("id = ?", enrollment.ID).Update("last_accessed_at", now)
	enrollment.LastAccessedAt = &now

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course content fetched successfully!", fiber.Map{
		"course":     course,
		"lessons":    lessons,
		"enrollment": enrollment,
	})
}

// GetEnrollmentStatus reports whether the caller is enrolled in a course.
func GetEnrollmentStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status fetched!", fiber.Map{
			"enrolled": false,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status fetched!", fiber.Map{
		"enrolled":   true,
		"enrollment": enrollment,
	})
}

// GetMyEnrollments lists the caller's enrollments with course details.
func GetMyEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedPagination").(*courseValidator.PaginationRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("user_id = ?", userID)

	var total int64
	db.Count(&total)

	var enrollments []courseModels.Enrollment
	if err := db.Preload("Course").Order("created_at desc").Offset(offset).Limit(limit).Find(&enrollments).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
