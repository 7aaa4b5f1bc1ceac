package supportRoutes

import (
	supportControllers "learnhub/controllers/support"
	"learnhub/middleware"
	"learnhub/models"
	supportValidators "learnhub/validators/support"

	"github.com/gofiber/fiber/v2"
)

func SetupSupportRoutes(app *fiber.App) {
	supportGroup := app.Group("/api/v1/support", middleware.JWTMiddleware)

	supportGroup.Post("/ticket", supportValidators.CreateSupportTicket(), supportControllers.CreateSupportTicket)
	supportGroup.Get("/ticket/list", supportValidators.TicketList(), supportControllers.MyTickets)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	supportGroup.Get("/admin/ticket/list", adminOnly, supportValidators.TicketList(), supportControllers.AdminTicketList)
	supportGroup.Patch("/admin/ticket/:id", adminOnly, supportValidators.TicketID(), supportValidators.AdminUpdateTicket(), supportControllers.AdminUpdateTicket)
}
