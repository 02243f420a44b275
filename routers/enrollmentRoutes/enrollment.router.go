package enrollmentRoutes

import (
	controllers "lms/controllers/enrollment"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

// SetupEnrollmentRoutes sets up student enrollment routes
func SetupEnrollmentRoutes(app *fiber.App) {
	enrollmentGroup := app.Group("/api/enrollments", middleware.JWTMiddleware, middleware.RequireRole(models.RoleStudent))

	enrollmentGroup.Post("/", validators.CreateEnrollment(), controllers.EnrollInCourse)
	enrollmentGroup.Get("/", validators.EnrollmentList(), controllers.GetEnrollments)
	enrollmentGroup.Delete("/:id", validators.EnrollmentID(), controllers.DeleteEnrollment)
}
