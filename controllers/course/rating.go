package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	"learnhub/services"
	courseValidator "learnhub/validators/course"
)

// SubmitRating creates the caller's rating for a course. One rating per
// (user, course) ever: a deactivated rating still blocks a new one. The
// course aggregates are re-derived before the response goes out.
func SubmitRating(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedRating").(*courseValidator.RatingRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, err := liveCourse(courseID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	db := database.Database.Db

	// Only enrolled students can rate
	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enroll in the course before rating it!", nil)
	}

	var existing courseModels.Rating
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You have already rated this course!", nil)
	}

	rating := courseModels.Rating{
		UserID:   userID,
		CourseID: courseID,
		Rating:   reqData.Rating,
		Comment:  reqData.Comment,
		IsActive: true,
	}
	if err := db.Create(&rating).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	services.RefreshRatingStats(courseID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Rating submitted successfully!", rating)
}

// UpdateRating changes the value or comment of an active rating. Owner or
// admin only.
func UpdateRating(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)
	ratingID := c.Locals("ratingID").(uint)

	reqData, ok := c.Locals("validatedRatingUpdate").(*courseValidator.RatingUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var rating courseModels.Rating
	if err := db.First(&rating, ratingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Rating not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	if rating.UserID != userID && role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only update your own rating!", nil)
	}
	if !rating.IsActive {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Rating has been deactivated!", nil)
	}

	if reqData.Rating != nil {
		rating.Rating = *reqData.Rating
	}
	if reqData.Comment != nil {
		rating.Comment = *reqData.Comment
	}

	if err := db.Save(&rating).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	services.RefreshRatingStats(rating.CourseID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Rating updated successfully!", rating)
}

// DeactivateRating soft-deletes a rating. The row stays for audit and keeps
// the (user, course) pair taken; the aggregates drop it immediately.
func DeactivateRating(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("role").(string)
	ratingID := c.Locals("ratingID").(uint)

	db := database.Database.Db

	var rating courseModels.Rating
	if err := db.First(&rating, ratingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Rating not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	if rating.UserID != userID && role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only remove your own rating!", nil)
	}
	if !rating.IsActive {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Rating is already deactivated!", nil)
	}

	if err := db.Model(&rating).Update("is_active", false).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	services.RefreshRatingStats(rating.CourseID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Rating removed successfully!", nil)
}

// GetCourseRatings lists the active ratings of a course, newest first.
func GetCourseRatings(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedPagination").(*courseValidator.PaginationRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, err := liveCourse(courseID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Rating{}).
		Where("course_id = ? AND is_active = ?", courseID, true)

	var total int64
	db.Count(&total)

	var ratings []courseModels.Rating
	if err := db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id, name, profile_image")
	}).Order("created_at desc").Offset(offset).Limit(limit).Find(&ratings).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Ratings fetched successfully!", fiber.Map{
		"ratings": ratings,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetRatingDistribution returns the 1..5 histogram of active ratings,
// computed on demand and never stored.
func GetRatingDistribution(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	course, err := liveCourse(courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var rows []struct {
		Rating int
		Count  int64
	}
	if err := database.Database.Db.Model(&courseModels.Rating{}).
		Select("rating, COUNT(*) AS count").
		Where("course_id = ? AND is_active = ?", courseID, true).
		Group("rating").Scan(&rows).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	counts := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	var total int64
	for _, row := range rows {
		counts[row.Rating] = row.Count
		total += row.Count
	}

	distribution := make([]fiber.Map, 0, 5)
	for star := 1; star <= 5; star++ {
		percent := 0.0
		if total > 0 {
			percent = float64(counts[star]) / float64(total) * 100
		}
		distribution = append(distribution, fiber.Map{
			"rating":  star,
			"count":   counts[star],
			"percent": percent,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Rating distribution fetched successfully!", fiber.Map{
		"average_rating": course.AverageRating,
		"total_ratings":  total,
		"distribution":   distribution,
	})
}
