package userControllers

import (
	"github.com/gofiber/fiber/v2"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/services"
	userValidator "learnhub/validators/userValidator"
)

// GetMyProfile returns the caller's account.
func GetMyProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	user.Sanitize()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}

// UpdateMyProfile updates the caller's display fields.
func UpdateMyProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedProfileUpdate").(*userValidator.UpdateProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if reqData.Name != nil {
		user.Name = *reqData.Name
	}
	if reqData.Bio != nil {
		user.Bio = *reqData.Bio
	}
	if reqData.Headline != nil {
		user.Headline = *reqData.Headline
	}
	if reqData.ProfileImage != nil {
		user.ProfileImage = *reqData.ProfileImage
	}

	if err := database.Database.Db.Save(&user).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	user.Sanitize()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", user)
}

// DeactivateMe soft-deletes the caller's own account. Reviews are hidden,
// favorites removed and the affected course stats recomputed.
func DeactivateMe(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	if err := services.DeactivateUser(userID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Account deleted successfully!", nil)
}

// AdminListUsers lists accounts with optional role and deleted filters.
func AdminListUsers(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUserList").(*userValidator.UserListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	page := *reqData.Page
	limit := *reqData.Limit
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.User{})
	if reqData.Deleted != nil {
		if *reqData.Deleted {
			db = db.Unscoped().Where("deleted_at IS NOT NULL")
		}
	} else {
		db = db.Unscoped()
	}
	if reqData.Role != "" {
		db = db.Where("role = ?", reqData.Role)
	}

	var total int64
	db.Count(&total)

	var users []models.User
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	for i := range users {
		users[i].Sanitize()
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AdminDeactivateUser soft-deletes another account (admin only).
func AdminDeactivateUser(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	targetID := c.Locals("targetUserID").(uint)

	if targetID == adminID {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Use the profile endpoint to delete your own account!", nil)
	}

	if err := services.DeactivateUser(targetID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deactivated successfully!", nil)
}

// AdminRestoreUser reactivates a soft-deleted account (admin only).
func AdminRestoreUser(c *fiber.Ctx) error {
	targetID := c.Locals("targetUserID").(uint)

	if err := services.RestoreUser(targetID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var user models.User
	if err := database.Database.Db.First(&user, targetID).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	user.Sanitize()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User restored successfully!", user)
}
