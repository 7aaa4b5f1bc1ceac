package courseValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"learnhub/middleware"
	"learnhub/validators"
)

// MediaRefPayload mirrors the embedded media columns on courses and lessons.
type MediaRefPayload struct {
	URL      string  `json:"url" validate:"omitempty,url"`
	PublicID string  `json:"public_id" validate:"omitempty,max=200"`
	Duration float64 `json:"duration" validate:"omitempty,gte=0"`
}

type CreateCourseRequest struct {
	Title       string           `json:"title" validate:"required,min=3,max=200"`
	Description string           `json:"description" validate:"required,min=10"`
	Category    string           `json:"category" validate:"omitempty,max=100"`
	Level       string           `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED ALL"`
	Price       *float64         `json:"price" validate:"omitempty,gte=0"`
	Tags        []string         `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
	Thumbnail   *MediaRefPayload `json:"thumbnail"`
	PromoVideo  *MediaRefPayload `json:"promo_video"`
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

type UpdateCourseRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string          `json:"description" validate:"omitempty,min=10"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Level       *string          `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED ALL"`
	Price       *float64         `json:"price" validate:"omitempty,gte=0"`
	Tags        *[]string        `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
	Thumbnail   *MediaRefPayload `json:"thumbnail"`
	PromoVideo  *MediaRefPayload `json:"promo_video"`
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Title != nil {
			trimmed := strings.TrimSpace(*reqData.Title)
			reqData.Title = &trimmed
		}

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

type CourseListRequest struct {
	Page     *int   `json:"page" validate:"required,gte=1"`
	Limit    *int   `json:"limit" validate:"required,gte=1,lte=100"`
	Category string `json:"category" validate:"omitempty,max=100"`
	Level    string `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED ALL"`
	Search   string `json:"search" validate:"omitempty,max=200"`
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseListRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}

// CourseID validates the :id path param and stores it for the handler.
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", uint(id))
		return c.Next()
	}
}
