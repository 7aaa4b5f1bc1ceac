package courseValidator

import (
	"github.com/gofiber/fiber/v2"

	"learnhub/middleware"
	"learnhub/validators"
)

type PaginationRequest struct {
	Page  *int `json:"page" validate:"required,gte=1"`
	Limit *int `json:"limit" validate:"required,gte=1,lte=100"`
}

// Pagination validates page/limit query params for the course-area list
// endpoints.
func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PaginationRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedPagination", reqData)
		return c.Next()
	}
}
