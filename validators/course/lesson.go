package courseValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"learnhub/middleware"
	"learnhub/validators"
)

type LessonRequest struct {
	Title       string           `json:"title" validate:"required,min=3,max=200"`
	Content     string           `json:"content" validate:"omitempty"`
	Video       *MediaRefPayload `json:"video"`
	Duration    *int             `json:"duration" validate:"omitempty,gte=0"` // minutes
	IsFree      *bool            `json:"is_free"`
	IsPublished *bool            `json:"is_published"`
}

func AddLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LessonRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

type LessonUpdateRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=3,max=200"`
	Content     *string          `json:"content"`
	Video       *MediaRefPayload `json:"video"`
	Duration    *int             `json:"duration" validate:"omitempty,gte=0"`
	OrderIndex  *int             `json:"order_index" validate:"omitempty,gte=1"`
	IsFree      *bool            `json:"is_free"`
	IsPublished *bool            `json:"is_published"`
}

func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LessonUpdateRequest)
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

		c.Locals("validatedLessonUpdate", reqData)
		return c.Next()
	}
}

type ReorderRequest struct {
	LessonIDs []uint `json:"lesson_ids" validate:"required,min=1,dive,gte=1"`
}

func ReorderLessons() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ReorderRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedReorder", reqData)
		return c.Next()
	}
}

type ResourceRequest struct {
	Name       string   `json:"name" validate:"required,min=1,max=200"`
	Type       string   `json:"type" validate:"required,oneof=PDF VIDEO IMAGE DOCUMENT LINK"`
	URL        string   `json:"url" validate:"required,url"`
	PublicID   string   `json:"public_id" validate:"omitempty,max=200"`
	Size       *int64   `json:"size" validate:"omitempty,gte=0"`
	Duration   *float64 `json:"duration" validate:"omitempty,gte=0"`
	OrderIndex *int     `json:"order_index" validate:"omitempty,gte=1"`
}

func AddResource() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ResourceRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Name = strings.TrimSpace(reqData.Name)

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedResource", reqData)
		return c.Next()
	}
}

type ResourceUpdateRequest struct {
	Name       *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Type       *string  `json:"type" validate:"omitempty,oneof=PDF VIDEO IMAGE DOCUMENT LINK"`
	URL        *string  `json:"url" validate:"omitempty,url"`
	PublicID   *string  `json:"public_id" validate:"omitempty,max=200"`
	Size       *int64   `json:"size" validate:"omitempty,gte=0"`
	Duration   *float64 `json:"duration" validate:"omitempty,gte=0"`
	OrderIndex *int     `json:"order_index" validate:"omitempty,gte=1"`
}

func UpdateResource() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ResourceUpdateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedResourceUpdate", reqData)
		return c.Next()
	}
}

// LessonID validates the :id path param for lesson routes.
func LessonID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		c.Locals("lessonID", uint(id))
		return c.Next()
	}
}

// ResourceID validates the :id path param for resource routes.
func ResourceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Resource ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Resource ID!", nil)
		}

		c.Locals("resourceID", uint(id))
		return c.Next()
	}
}
