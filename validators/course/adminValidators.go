package courseValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"learnhub/middleware"
	"learnhub/validators"
)

// ============ Certificate Validators ============

type ReviewCertificateRequest struct {
	Action string `json:"action" validate:"required,oneof=APPROVE REJECT"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

func ReviewCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ReviewCertificateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		// Reject needs a reason the student can act on
		if reqData.Action == "REJECT" && strings.TrimSpace(reqData.Reason) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"reason": "Reason is required when rejecting a request!",
			})
		}

		c.Locals("validatedCertificateReview", reqData)
		return c.Next()
	}
}

// RequestID validates the :id path param for certificate request routes.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Request ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Request ID!", nil)
		}

		c.Locals("requestID", uint(id))
		return c.Next()
	}
}
