package controllers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
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

// ownedCourse loads a live course and checks the caller may manage it.
// Soft-deleted courses are invisible here; lifecycle handlers that need them
// load with Unscoped themselves.
func ownedCourse(courseID uint, userID uint, role string) (*courseModels.Course, error) {
	var course courseModels.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Course not found!")
		}
		return nil, err
	}
	if course.InstructorID != userID && role != models.RoleAdmin {
		return nil, apperrors.NewForbidden("You can only manage your own courses!")
	}
	return &course, nil
}

// liveCourse loads a published, non-deleted course for student-facing
// mutations (enroll, rate, favorite).
func liveCourse(courseID uint) (*courseModels.Course, error) {
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_published = ?", courseID, true).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Course not found!")
		}
		return nil, err
	}
	return &course, nil
}

func tagsJSON(tags []string) datatypes.JSON {
	if len(tags) == 0 {
		return nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

// CreateCourse creates a new unpublished course owned by the caller.
func CreateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := courseModels.Course{
		InstructorID: userID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		Category:     reqData.Category,
		Tags:         tagsJSON(reqData.Tags),
		IsPublished:  false,
	}
	if reqData.Level != "" {
		course.Level = reqData.Level
	}
	if reqData.Price != nil {
		course.Price = *reqData.Price
	}
	if reqData.Thumbnail != nil {
		course.Thumbnail = courseModels.MediaRef{URL: reqData.Thumbnail.URL, PublicID: reqData.Thumbnail.PublicID}
	}
	if reqData.PromoVideo != nil {
		course.PromoVideo = courseModels.MediaRef{
			URL:      reqData.PromoVideo.URL,
			PublicID: reqData.PromoVideo.PublicID,
			Duration: reqData.PromoVideo.Duration,
		}
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// UpdateCourse updates the descriptive fields of a course. Stats and publish
// state have their own endpoints.
func UpdateCourse(c *fiber.Ctx) error {
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

	reqData, ok := c.Locals("validatedCourseUpdate").(*courseValidator.UpdateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != nil {
		course.Title = *reqData.Title
	}
	if reqData.Description != nil {
		course.Description = *reqData.Description
	}
	if reqData.Category != nil {
		course.Category = *reqData.Category
	}
	if reqData.Level != nil {
		course.Level = *reqData.Level
	}
	if reqData.Price != nil {
		course.Price = *reqData.Price
	}
	if reqData.Tags != nil {
		course.Tags = tagsJSON(*reqData.Tags)
	}

	// Replacing a stored asset orphans the old upload; collect it for
	// cleanup after the save.
	var replaced []string
	if reqData.Thumbnail != nil {
		if course.Thumbnail.PublicID != "" && course.Thumbnail.PublicID != reqData.Thumbnail.PublicID {
			replaced = append(replaced, course.Thumbnail.PublicID)
		}
		course.Thumbnail = courseModels.MediaRef{URL: reqData.Thumbnail.URL, PublicID: reqData.Thumbnail.PublicID}
	}
	if reqData.PromoVideo != nil {
		if course.PromoVideo.PublicID != "" && course.PromoVideo.PublicID != reqData.PromoVideo.PublicID {
			replaced = append(replaced, course.PromoVideo.PublicID)
		}
		course.PromoVideo = courseModels.MediaRef{
			URL:      reqData.PromoVideo.URL,
			PublicID: reqData.PromoVideo.PublicID,
			Duration: reqData.PromoVideo.Duration,
		}
	}

	if err := database.Database.Db.Save(course).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if len(replaced) > 0 {
		go utils.CleanupMedia(replaced)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// PublishCourse makes a course visible in the catalog. A course needs at
// least one lesson before it can go live.
func PublishCourse(c *fiber.Ctx) error {
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

	if course.IsPublished {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course is already published!", nil)
	}

	var lessonCount int64
	database.Database.Db.Model(&courseModels.Lesson{}).Where("course_id = ?", courseID).Count(&lessonCount)
	if lessonCount == 0 {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Add at least one lesson before publishing!", nil)
	}

	course.IsPublished = true
	if err := database.Database.Db.Save(course).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", course)
}

// GetCourseList returns the public catalog: published, non-deleted courses
// with optional category/level filters and a title search.
func GetCourseList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourseList").(*courseValidator.CourseListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{}).Where("is_published = ?", true)
	if reqData.Category != "" {
		db = db.Where("category = ?", reqData.Category)
	}
	if reqData.Level != "" {
		db = db.Where("level = ?", reqData.Level)
	}
	if reqData.Search != "" {
		db = db.Where("LOWER(title) LIKE LOWER(?)", "%"+reqData.Search+"%")
	}

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Preload("Instructor", func(db *gorm.DB) *gorm.DB {
		return db.Select("id, name, headline")
	}).Order("created_at desc").Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourseDetails returns one course with its ordered lessons and
// resources. Unpublished courses are visible to their owner and admins only.
func GetCourseDetails(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	userID, _ := c.Locals("userId").(uint)
	role, _ := c.Locals("role").(string)

	var course courseModels.Course
	err := database.Database.Db.
		Preload("Instructor", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, bio, headline, profile_image")
		}).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc, created_at asc, id asc")
		}).
		Preload("Lessons.Resources", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc, created_at asc, id asc")
		}).
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	if !course.IsPublished && course.InstructorID != userID && role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", course)
}

// GetMyCourses lists the caller's own courses, published or not.
func GetMyCourses(c *fiber.Ctx) error {
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

	db := database.Database.Db.Model(&courseModels.Course{}).Where("instructor_id = ?", userID)

	var total int64
	db.Count(&total)

	var courses []courseModels.Course
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// DeleteCourse soft-deletes a course. The course disappears from the catalog
// and from every favorites list; enrollments and ratings stay for the record.
func DeleteCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)
	courseID := c.Locals("courseID").(uint)

	if _, err := ownedCourse(courseID, userID, role); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := services.SoftDeleteCourse(courseID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// RestoreCourse brings a soft-deleted course back (admin only). Stats are
// re-derived before it becomes visible again.
func RestoreCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	if err := services.RestoreCourse(courseID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var course courseModels.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course restored successfully!", course)
}

// PurgeCourse permanently removes a soft-deleted course and everything
// hanging off it (admin only). Stored media is cleaned up best effort.
func PurgeCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	publicIDs, err := services.PurgeCourse(courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if len(publicIDs) > 0 {
		go utils.CleanupMedia(publicIDs)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course purged successfully!", fiber.Map{
		"removed_media": len(publicIDs),
	})
}
