package supportValidators

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"learnhub/middleware"
	"learnhub/validators"
)

type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"required,min=5"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    string `json:"category" validate:"omitempty,oneof=general course payment technical"`
}

func CreateSupportTicket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateTicketRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)
		reqData.Priority = strings.ToLower(reqData.Priority)
		reqData.Category = strings.ToLower(reqData.Category)

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedSupportTicket", reqData)
		return c.Next()
	}
}

type TicketListRequest struct {
	Page     *int   `json:"page" validate:"required,gte=1"`
	Limit    *int   `json:"limit" validate:"required,gte=1,lte=100"`
	Status   string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category string `json:"category" validate:"omitempty,oneof=general course payment technical"`
}

func TicketList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(TicketListRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		reqData.Status = strings.ToLower(reqData.Status)
		reqData.Priority = strings.ToLower(reqData.Priority)
		reqData.Category = strings.ToLower(reqData.Category)

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		c.Locals("validatedTicketList", reqData)
		return c.Next()
	}
}

type UpdateTicketRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Reply  string `json:"reply" validate:"omitempty,min=1,max=5000"`
}

func AdminUpdateTicket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateTicketRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Status = strings.ToLower(strings.TrimSpace(reqData.Status))
		reqData.Reply = strings.TrimSpace(reqData.Reply)

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.FieldErrors(err))
		}

		if reqData.Status == "" && reqData.Reply == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"request": "Provide a status or a reply!",
			})
		}

		c.Locals("validatedTicketUpdate", reqData)
		return c.Next()
	}
}

// TicketID validates the :id path param on ticket routes.
func TicketID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Ticket ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Ticket ID!", nil)
		}

		c.Locals("ticketID", uint(id))
		return c.Next()
	}
}
