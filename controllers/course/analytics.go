package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	courseValidator "learnhub/validators/course"
)

// AdminPlatformStats returns platform-wide counts for the admin dashboard.
func AdminPlatformStats(c *fiber.Ctx) error {
	db := database.Database.Db

	var totalUsers, totalStudents, totalInstructors, deactivatedUsers int64
	db.Model(&models.User{}).Count(&totalUsers)
	db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&totalStudents)
	db.Model(&models.User{}).Where("role = ?", models.RoleInstructor).Count(&totalInstructors)
	db.Unscoped().Model(&models.User{}).Where("deleted_at IS NOT NULL").Count(&deactivatedUsers)

	var totalCourses, publishedCourses, deletedCourses int64
	db.Model(&courseModels.Course{}).Count(&totalCourses)
	db.Model(&courseModels.Course{}).Where("is_published = ?", true).Count(&publishedCourses)
	db.Unscoped().Model(&courseModels.Course{}).Where("deleted_at IS NOT NULL").Count(&deletedCourses)

	var totalEnrollments, completedEnrollments int64
	db.Model(&courseModels.Enrollment{}).Count(&totalEnrollments)
	db.Model(&courseModels.Enrollment{}).Where("status = ?", courseModels.EnrollmentCompleted).Count(&completedEnrollments)

	var enrollmentsToday, enrollmentsThisWeek, enrollmentsThisMonth int64
	db.Model(&courseModels.Enrollment{}).Where("enrolled_at >= ?", now.BeginningOfDay()).Count(&enrollmentsToday)
	db.Model(&courseModels.Enrollment{}).Where("enrolled_at >= ?", now.BeginningOfWeek()).Count(&enrollmentsThisWeek)
	db.Model(&courseModels.Enrollment{}).Where("enrolled_at >= ?", now.BeginningOfMonth()).Count(&enrollmentsThisMonth)

	var totalRatings, totalFavorites int64
	db.Model(&courseModels.Rating{}).Where("is_active = ?", true).Count(&totalRatings)
	db.Model(&courseModels.Favorite{}).Count(&totalFavorites)

	var issuedCertificates, pendingCertificates int64
	db.Model(&courseModels.Certificate{}).Count(&issuedCertificates)
	db.Model(&courseModels.CertificateRequest{}).Where("status = ?", courseModels.CertificatePending).Count(&pendingCertificates)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Platform stats fetched successfully!", fiber.Map{
		"users": fiber.Map{
			"total":       totalUsers,
			"students":    totalStudents,
			"instructors": totalInstructors,
			"deactivated": deactivatedUsers,
		},
		"courses": fiber.Map{
			"total":     totalCourses,
			"published": publishedCourses,
			"deleted":   deletedCourses,
		},
		"enrollments": fiber.Map{
			"total":      totalEnrollments,
			"completed":  completedEnrollments,
			"today":      enrollmentsToday,
			"this_week":  enrollmentsThisWeek,
			"this_month": enrollmentsThisMonth,
		},
		"engagement": fiber.Map{
			"active_ratings": totalRatings,
			"favorites":      totalFavorites,
		},
		"certificates": fiber.Map{
			"issued":  issuedCertificates,
			"pending": pendingCertificates,
		},
	})
}

// AdminCourseEnrollments lists enrollments for a course, including
// soft deleted courses.
func AdminCourseEnrollments(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedPagination").(*courseValidator.PaginationRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Unscoped().First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var total int64
	db.Model(&courseModels.Enrollment{}).Where("course_id = ?", courseID).Count(&total)

	var enrollments []courseModels.Enrollment
	if err := db.Where("course_id = ?", courseID).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, email")
		}).
		Order("enrolled_at desc").
		Offset(offset).Limit(limit).
		Find(&enrollments).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course enrollments fetched successfully!", fiber.Map{
		"course": fiber.Map{
			"id":      course.ID,
			"title":   course.Title,
			"deleted": course.DeletedAt.Valid,
		},
		"enrollments": enrollments,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// InstructorCourseStats returns per-course engagement numbers for the
// owning instructor.
func InstructorCourseStats(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)
	courseID := c.Locals("courseID").(uint)

	course, err := ownedCourse(courseID, userID, role)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	db := database.Database.Db

	var enrolled, inProgress, completed int64
	db.Model(&courseModels.Enrollment{}).Where("course_id = ?", courseID).Count(&enrolled)
	db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND status = ?", courseID, courseModels.EnrollmentInProgress).Count(&inProgress)
	db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND status = ?", courseID, courseModels.EnrollmentCompleted).Count(&completed)

	completionRate := 0.0
	if enrolled > 0 {
		completionRate = float64(completed) / float64(enrolled) * 100
	}

	type ratingBucket struct {
		Rating int
		Count  int64
	}
	var buckets []ratingBucket
	db.Model(&courseModels.Rating{}).
		Select("rating, COUNT(*) as count").
		Where("course_id = ? AND is_active = ?", courseID, true).
		Group("rating").
		Find(&buckets)

	distribution := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, b := range buckets {
		distribution[b.Rating] = b.Count
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course stats fetched successfully!", fiber.Map{
		"course_id":      course.ID,
		"title":          course.Title,
		"is_published":   course.IsPublished,
		"total_lessons":  course.TotalLessons,
		"total_duration": course.TotalDuration,
		"enrollments": fiber.Map{
			"total":           enrolled,
			"in_progress":     inProgress,
			"completed":       completed,
			"completion_rate": completionRate,
		},
		"ratings": fiber.Map{
			"average":      course.AverageRating,
			"total":        course.TotalRatings,
			"distribution": distribution,
		},
		"favorite_count": course.FavoriteCount,
	})
}
