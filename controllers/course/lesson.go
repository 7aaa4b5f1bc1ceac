package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"learnhub/apperrors"
	"learnhub/database"
	"learnhub/middleware"
	courseModels "learnhub/models/course"
	"learnhub/services"
	"learnhub/utils"
	courseValidator "learnhub/validators/course"
)

// lessonWithCourse loads a lesson and its owning course for management
// operations. The course must be live; ownership is checked against the
// caller.
func lessonWithCourse(lessonID uint, userID uint, role string) (*courseModels.Lesson, *courseModels.Course, error) {
	var lesson courseModels.Lesson
	if err := database.Database.Db.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NewNotFound("Lesson not found!")
		}
		return nil, nil, err
	}
	course, err := ownedCourse(lesson.CourseID, userID, role)
	if err != nil {
		return nil, nil, err
	}
	return &lesson, course, nil
}

// AddLesson appends a lesson to a course. The lesson lands at the end of the
// running order and the course rollups are recomputed in the same
// transaction.
func AddLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)
	courseID := c.Locals("courseID").(uint)

	if _, err := ownedCourse(courseID, userID, role); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	reqData, ok := c.Locals("validatedLesson").(*courseValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson := courseModels.Lesson{
		CourseID:    courseID,
		Title:       reqData.Title,
		Content:     reqData.Content,
		IsPublished: true,
	}
	if reqData.Duration != nil {
		lesson.Duration = *reqData.Duration
	}
	if reqData.IsFree != nil {
		lesson.IsFree = *reqData.IsFree
	}
	if reqData.IsPublished != nil {
		lesson.IsPublished = *reqData.IsPublished
	}
	if reqData.Video != nil {
		lesson.Video = courseModels.MediaRef{
			URL:      reqData.Video.URL,
			PublicID: reqData.Video.PublicID,
			Duration: reqData.Video.Duration,
		}
	}

	err := services.WithCourseLock(courseID, func() error {
		tx := database.Database.Db.Begin()
		if tx.Error != nil {
			return tx.Error
		}

		var maxOrder int
		tx.Model(&courseModels.Lesson{}).Where("course_id = ?", courseID).
			Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder)
		lesson.OrderIndex = maxOrder + 1

		if err := tx.Create(&lesson).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := services.RecalcContentStats(tx, courseID); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit().Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	// Every enrollment's denominator just changed
	services.RefreshCourseProgress(courseID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson added successfully!", lesson)
}

// UpdateLesson patches a lesson. Duration or video changes re-derive the
// course rollups in the same transaction.
func UpdateLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)
	lessonID := c.Locals("lessonID").(uint)

	lesson, _, err := lessonWithCourse(lessonID, userID, role)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	reqData, ok := c.Locals("validatedLessonUpdate").(*courseValidator.LessonUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != nil {
		lesson.Title = *reqData.Title
	}
	if reqData.Content != nil {
		lesson.Content = *reqData.Content
	}
	if reqData.Duration != nil {
		lesson.Duration = *reqData.Duration
	}
	if reqData.OrderIndex != nil {
		// Caller-supplied order; duplicates are tolerated and reads break
		// ties by creation time
		lesson.OrderIndex = *reqData.OrderIndex
	}
	if reqData.IsFree != nil {
		lesson.IsFree = *reqData.IsFree
	}
	if reqData.IsPublished != nil {
		lesson.IsPublished = *reqData.IsPublished
	}

	var replaced []string
	if reqData.Video != nil {
		if lesson.Video.PublicID != "" && lesson.Video.PublicID != reqData.Video.PublicID {
			replaced = append(replaced, lesson.Video.PublicID)
		}
		lesson.Video = courseModels.MediaRef{
			URL:      reqData.Video.URL,
			PublicID: reqData.Video.PublicID,
			Duration: reqData.Video.Duration,
		}
	}

	err = services.WithCourseLock(lesson.CourseID, func() error {
		tx := database.Database.Db.Begin()
		if tx.Error != nil {
			return tx.Error
		}
		if err := tx.Save(lesson).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := services.RecalcContentStats(tx, lesson.CourseID); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit().Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if len(replaced) > 0 {
		go utils.CleanupMedia(replaced)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// DeleteLesson removes a lesson and its resources for good. Remaining
// lessons keep their order values; the gap is harmless because reads sort.
func DeleteLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)
	lessonID := c.Locals("lessonID").(uint)

	lesson, _, err := lessonWithCourse(lessonID, userID, role)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	// Collect stored media before the rows disappear
	publicIDs := make([]string, 0, 4)
	if lesson.Video.PublicID != "" {
		publicIDs = append(publicIDs, lesson.Video.PublicID)
	}
	var resources []courseModels.Resource
	if err := database.Database.Db.Where("lesson_id = ?", lessonID).Find(&resources).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	for i := range resources {
		if resources[i].PublicID != "" {
			publicIDs = append(publicIDs, resources[i].PublicID)
		}
	}

	err = services.WithCourseLock(lesson.CourseID, func() error {
		tx := database.Database.Db.Begin()
		if tx.Error != nil {
			return tx.Error
		}
		if err := tx.Unscoped().Where("lesson_id = ?", lessonID).Delete(&courseModels.Resource{}).Error; err != nil {
			tx.Rollback()
			return err
		}
		// Completion rows stay; progress derivation only counts live lessons
		if err := tx.Unscoped().Delete(&courseModels.Lesson{}, lessonID).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := services.RecalcContentStats(tx, lesson.CourseID); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit().Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	services.RefreshCourseProgress(lesson.CourseID)

	if len(publicIDs) > 0 {
		go utils.CleanupMedia(publicIDs)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// ReorderLessons rewrites the order of every lesson in a course. The request
// must list each current lesson exactly once; the new order is 1..n.
func ReorderLessons(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)
	courseID := c.Locals("courseID").(uint)

	if _, err := ownedCourse(courseID, userID, role); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	reqData, ok := c.Locals("validatedReorder").(*courseValidator.ReorderRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var currentIDs []uint
	if err := database.Database.Db.Model(&courseModels.Lesson{}).
		Where("course_id = ?", courseID).Pluck("id", &currentIDs).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if len(reqData.LessonIDs) != len(currentIDs) {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Reorder must list every lesson of the course exactly once!", nil)
	}
	current := make(map[uint]bool, len(currentIDs))
	for _, id := range currentIDs {
		current[id] = true
	}
	seen := make(map[uint]bool, len(reqData.LessonIDs))
	for _, id := range reqData.LessonIDs {
		if !current[id] || seen[id] {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Reorder must list every lesson of the course exactly once!", nil)
		}
		seen[id] = true
	}

	err := services.WithCourseLock(courseID, func() error {
		tx := database.Database.Db.Begin()
		if tx.Error != nil {
			return tx.Error
		}
		for position, id := range reqData.LessonIDs {
			if err := tx.Model(&courseModels.Lesson{}).Where("id = ?", id).
				Update("order_index", position+1).Error; err != nil {
				tx.Rollback()
				return err
			}
		}
		return tx.Commit().Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var lessons []courseModels.Lesson
	if err := database.Database.Db.Where("course_id = ?", courseID).
		Order("order_index asc, created_at asc, id asc").Find(&lessons).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons reordered successfully!", lessons)
}

// AddResource attaches a resource to a lesson.
func AddResource(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)
	lessonID := c.Locals("lessonID").(uint)

	if _, _, err := lessonWithCourse(lessonID, userID, role); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	reqData, ok := c.Locals("validatedResource").(*courseValidator.ResourceRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	resource := courseModels.Resource{
		LessonID: lessonID,
		Name:     reqData.Name,
		Type:     reqData.Type,
		URL:      reqData.URL,
		PublicID: reqData.PublicID,
	}
	if reqData.Size != nil {
		resource.Size = *reqData.Size
	}
	if reqData.Duration != nil {
		resource.Duration = *reqData.Duration
	}
	if reqData.OrderIndex != nil {
		resource.OrderIndex = *reqData.OrderIndex
	} else {
		var maxOrder int
		database.Database.Db.Model(&courseModels.Resource{}).Where("lesson_id = ?", lessonID).
			Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder)
		resource.OrderIndex = maxOrder + 1
	}

	if err := database.Database.Db.Create(&resource).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Resource added successfully!", resource)
}

// UpdateResource patches a resource on a lesson.
func UpdateResource(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)
	resourceID := c.Locals("resourceID").(uint)

	var resource courseModels.Resource
	if err := database.Database.Db.First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Resource not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	if _, _, err := lessonWithCourse(resource.LessonID, userID, role); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	reqData, ok := c.Locals("validatedResourceUpdate").(*courseValidator.ResourceUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Name != nil {
		resource.Name = *reqData.Name
	}
	if reqData.Type != nil {
		resource.Type = *reqData.Type
	}
	var replaced []string
	if reqData.URL != nil {
		newPublicID := resource.PublicID
		if reqData.PublicID != nil {
			newPublicID = *reqData.PublicID
		}
		if resource.PublicID != "" && resource.PublicID != newPublicID {
			replaced = append(replaced, resource.PublicID)
		}
		resource.URL = *reqData.URL
		resource.PublicID = newPublicID
	}
	if reqData.Size != nil {
		resource.Size = *reqData.Size
	}
	if reqData.Duration != nil {
		resource.Duration = *reqData.Duration
	}
	if reqData.OrderIndex != nil {
		resource.OrderIndex = *reqData.OrderIndex
	}

	if err := database.Database.Db.Save(&resource).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if len(replaced) > 0 {
		go utils.CleanupMedia(replaced)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resource updated successfully!", resource)
}

// DeleteResource removes a resource from a lesson.
func DeleteResource(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)
	resourceID := c.Locals("resourceID").(uint)

	var resource courseModels.Resource
	if err := database.Database.Db.First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Resource not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	if _, _, err := lessonWithCourse(resource.LessonID, userID, role); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := database.Database.Db.Unscoped().Delete(&courseModels.Resource{}, resourceID).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if resource.PublicID != "" {
		go utils.CleanupMedia([]string{resource.PublicID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resource deleted successfully!", nil)
}
