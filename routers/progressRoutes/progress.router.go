package progressRoutes

import (
	controllers "lms/controllers/progress"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/progress"

	"github.com/gofiber/fiber/v2"
)

// SetupProgressRoutes sets up lesson completion routes
func SetupProgressRoutes(app *fiber.App) {
	progressGroup := app.Group("/api/progress", middleware.JWTMiddleware, middleware.RequireRole(models.RoleStudent))

	progressGroup.Post("/", validators.UpsertProgress(), controllers.UpsertProgress)
}
