package courseRoutes

import (
	controllers "learnhub/controllers/course"
	"learnhub/middleware"
	"learnhub/models"
	validators "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseAdminRoutes sets up the admin-only course routes. Must be
// registered before SetupCourseRoutes so /course/admin/* is matched ahead
// of /course/:id/*. Middleware goes on each route, not on the group; a
// group-level handler would run for every /course path.
func SetupCourseAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/api/v1/course")

	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	adminGroup.Get("/admin/stats", middleware.JWTMiddleware, adminOnly, controllers.AdminPlatformStats)
	adminGroup.Get("/admin/certificates", middleware.JWTMiddleware, adminOnly, validators.Pagination(), controllers.AdminListCertificateRequests)
	adminGroup.Get("/admin/:id/enrollments", middleware.JWTMiddleware, adminOnly, validators.CourseID(), validators.Pagination(), controllers.AdminCourseEnrollments)

	adminGroup.Patch("/certificate/:id/review", middleware.JWTMiddleware, adminOnly, validators.RequestID(), validators.ReviewCertificate(), controllers.AdminReviewCertificate)

	adminGroup.Patch("/:id/restore", middleware.JWTMiddleware, adminOnly, validators.CourseID(), controllers.RestoreCourse)
	adminGroup.Delete("/:id/purge", middleware.JWTMiddleware, adminOnly, validators.CourseID(), controllers.PurgeCourse)
}
