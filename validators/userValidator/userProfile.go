package userValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"learnhub/middleware"
	"learnhub/validators"
)

type UpdateProfileRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=100"`
	Bio          *string `json:"bio" validate:"omitempty,max=2000"`
	Headline     *string `json:"headline" validate:"omitempty,max=150"`
	ProfileImage *string `json:"profile_image" validate:"omitempty,url"`
}

func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateProfileRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Name != nil {
			trimmed := strings.TrimSpace(*reqData.Name)
			reqData.Name = &trimmed
		}

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedProfileUpdate", reqData)
		return c.Next()
	}
}

type UserListRequest struct {
	Page    *int   `json:"page" validate:"required,gte=1"`
	Limit   *int   `json:"limit" validate:"required,gte=1,lte=100"`
	Role    string `json:"role" validate:"omitempty,oneof=STUDENT INSTRUCTOR ADMIN"`
	Deleted *bool  `json:"deleted"`
}

// UserList validates the admin account listing query.
func UserList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UserListRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedUserList", reqData)
		return c.Next()
	}
}

// UserID validates the :id path param on admin user routes.
func UserID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
		}

		c.Locals("targetUserID", uint(id))
		return c.Next()
	}
}
