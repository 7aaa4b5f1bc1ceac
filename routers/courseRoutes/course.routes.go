package courseRoutes

import (
	controllers "learnhub/controllers/course"
	"learnhub/middleware"
	"learnhub/models"
	validators "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up catalog, authoring, rating, favorite and
// enrollment routes. Static paths are registered before the :id routes so
// /list, /my, /lesson and friends never get swallowed by the param matcher.
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/api/v1/course")

	instructorOnly := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)

	// Catalog
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetCourseList)
	courseGroup.Get("/my", middleware.JWTMiddleware, instructorOnly, validators.Pagination(), controllers.GetMyCourses)

	// Lessons and resources (authoring)
	courseGroup.Patch("/lesson/:id", middleware.JWTMiddleware, instructorOnly, validators.LessonID(), validators.UpdateLesson(), controllers.UpdateLesson)
	courseGroup.Delete("/lesson/:id", middleware.JWTMiddleware, instructorOnly, validators.LessonID(), controllers.DeleteLesson)
	courseGroup.Post("/lesson/:id/resource", middleware.JWTMiddleware, instructorOnly, validators.LessonID(), validators.AddResource(), controllers.AddResource)
	courseGroup.Patch("/resource/:id", middleware.JWTMiddleware, instructorOnly, validators.ResourceID(), validators.UpdateResource(), controllers.UpdateResource)
	courseGroup.Delete("/resource/:id", middleware.JWTMiddleware, instructorOnly, validators.ResourceID(), controllers.DeleteResource)

	// Lesson completion (students)
	courseGroup.Post("/lesson/:id/complete", middleware.JWTMiddleware, validators.LessonID(), controllers.CompleteLesson)

	// Ratings by rating id
	courseGroup.Patch("/rating/:id", middleware.JWTMiddleware, validators.RatingID(), validators.UpdateRating(), controllers.UpdateRating)
	courseGroup.Delete("/rating/:id", middleware.JWTMiddleware, validators.RatingID(), controllers.DeactivateRating)

	// Course CRUD
	courseGroup.Post("/", middleware.JWTMiddleware, instructorOnly, validators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)
	courseGroup.Patch("/:id", middleware.JWTMiddleware, instructorOnly, validators.CourseID(), validators.UpdateCourse(), controllers.UpdateCourse)
	courseGroup.Patch("/:id/publish", middleware.JWTMiddleware, instructorOnly, validators.CourseID(), controllers.PublishCourse)
	courseGroup.Delete("/:id", middleware.JWTMiddleware, instructorOnly, validators.CourseID(), controllers.DeleteCourse)

	// Lesson authoring under a course
	courseGroup.Post("/:id/lesson", middleware.JWTMiddleware, instructorOnly, validators.CourseID(), validators.AddLesson(), controllers.AddLesson)
	courseGroup.Patch("/:id/lessons/reorder", middleware.JWTMiddleware, instructorOnly, validators.CourseID(), validators.ReorderLessons(), controllers.ReorderLessons)

	// Ratings under a course
	courseGroup.Get("/:id/ratings", middleware.JWTMiddleware, validators.CourseID(), validators.Pagination(), controllers.GetCourseRatings)
	courseGroup.Get("/:id/ratings/distribution", middleware.JWTMiddleware, validators.CourseID(), controllers.GetRatingDistribution)
	courseGroup.Post("/:id/rating", middleware.JWTMiddleware, validators.CourseID(), validators.SubmitRating(), controllers.SubmitRating)

	// Favorites
	courseGroup.Post("/:id/favorite", middleware.JWTMiddleware, validators.CourseID(), controllers.ToggleFavorite)
	courseGroup.Delete("/:id/favorite", middleware.JWTMiddleware, validators.CourseID(), controllers.RemoveFavorite)

	// Enrollment and learning
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.EnrollInCourse)
	courseGroup.Get("/:id/learn", middleware.JWTMiddleware, validators.CourseID(), controllers.GetLearnView)
	courseGroup.Get("/:id/enrollment", middleware.JWTMiddleware, validators.CourseID(), controllers.GetEnrollmentStatus)

	// Certificates
	courseGroup.Post("/:id/certificate", middleware.JWTMiddleware, validators.CourseID(), controllers.RequestCertificate)

	// Instructor stats
	courseGroup.Get("/:id/stats", middleware.JWTMiddleware, instructorOnly, validators.CourseID(), controllers.InstructorCourseStats)
}
