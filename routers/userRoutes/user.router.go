package userRoutes

import (
	courseControllers "learnhub/controllers/course"
	userControllers "learnhub/controllers/userControllers"
	"learnhub/middleware"
	"learnhub/models"
	courseValidators "learnhub/validators/course"
	userValidators "learnhub/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/api/v1/user", middleware.JWTMiddleware)

	// Own profile
	userGroup.Get("/me", userControllers.GetMyProfile)
	userGroup.Patch("/me", userValidators.UpdateProfile(), userControllers.UpdateMyProfile)
	userGroup.Delete("/me", userControllers.DeactivateMe)

	// Own favorites, enrollments and certificates
	userGroup.Get("/favorites", courseValidators.Pagination(), courseControllers.GetMyFavorites)
	userGroup.Delete("/favorites", courseControllers.ClearFavorites)
	userGroup.Get("/enrollments", courseValidators.Pagination(), courseControllers.GetMyEnrollments)
	userGroup.Get("/certificates", courseControllers.GetMyCertificates)

	// Admin account management
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	userGroup.Get("/list", adminOnly, userValidators.UserList(), userControllers.AdminListUsers)
	userGroup.Delete("/:id", adminOnly, userValidators.UserID(), userControllers.AdminDeactivateUser)
	userGroup.Patch("/:id/restore", adminOnly, userValidators.UserID(), userControllers.AdminRestoreUser)
}
