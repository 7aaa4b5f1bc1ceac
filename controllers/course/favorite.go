package controllers

import (
	"github.com/gofiber/fiber/v2"

	"learnhub/apperrors"
	"learnhub/database"
	"learnhub/middleware"
	courseModels "learnhub/models/course"
	"learnhub/services"
	courseValidator "learnhub/validators/course"
)

// ToggleFavorite flips the caller's favorite for a course and reports the
// resulting state. The favorite count is re-derived either way.
func ToggleFavorite(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	if _, err := liveCourse(courseID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	db := database.Database.Db

	favorited := false
	var existing courseModels.Favorite
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err == nil {
		if err := db.Unscoped().Delete(&courseModels.Favorite{}, existing.ID).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}
	} else {
		favorite := courseModels.Favorite{UserID: userID, CourseID: courseID}
		if err := db.Create(&favorite).Error; err != nil {
			// A concurrent toggle can win the insert; the pair is favorited
			// either way
			if !apperrors.Duplicate(err) {
				return middleware.ErrorResponse(c, err)
			}
		}
		favorited = true
	}

	services.RefreshFavoriteStats(courseID)

	message := "Course removed from favorites!"
	if favorited {
		message = "Course added to favorites!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"course_id": courseID,
		"favorited": favorited,
	})
}

// RemoveFavorite removes one favorite explicitly. Removing a course that is
// not favorited is a validation failure, unlike the toggle.
func RemoveFavorite(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	if _, err := liveCourse(courseID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	db := database.Database.Db

	var favorite courseModels.Favorite
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&favorite).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Course is not in your favorites!", nil)
	}

	if err := db.Unscoped().Delete(&courseModels.Favorite{}, favorite.ID).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	services.RefreshFavoriteStats(courseID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course removed from favorites!", fiber.Map{
		"course_id": courseID,
		"favorited": false,
	})
}

// GetMyFavorites lists the caller's favorited courses, newest first.
func GetMyFavorites(c *fiber.Ctx) error {
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

	db := database.Database.Db.Model(&courseModels.Favorite{}).Where("user_id = ?", userID)

	var total int64
	db.Count(&total)

	var favorites []courseModels.Favorite
	if err := db.Preload("Course").Order("created_at desc").Offset(offset).Limit(limit).Find(&favorites).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Favorites fetched successfully!", fiber.Map{
		"favorites": favorites,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// ClearFavorites empties the caller's favorites in one shot and re-derives
// the count of every course that was in the set.
func ClearFavorites(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var courseIDs []uint
	if err := db.Model(&courseModels.Favorite{}).Where("user_id = ?", userID).
		Pluck("course_id", &courseIDs).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if len(courseIDs) == 0 {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Favorites cleared successfully!", fiber.Map{
			"removed": 0,
		})
	}

	if err := db.Unscoped().Where("user_id = ?", userID).Delete(&courseModels.Favorite{}).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	for _, id := range courseIDs {
		services.RefreshFavoriteStats(id)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Favorites cleared successfully!", fiber.Map{
		"removed": len(courseIDs),
	})
}
