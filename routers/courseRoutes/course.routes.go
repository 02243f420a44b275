package courseRoutes

import (
	controllers "lms/controllers/course"
	progressController "lms/controllers/progress"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"
	progressValidator "lms/validators/progress"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up course, lesson and per-course progress routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/api/courses", middleware.JWTMiddleware)

	// Course listing and details (any authenticated role)
	courseGroup.Get("/", validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/mine", middleware.RequireRole(models.RoleInstructor), controllers.GetMyCourses)
	courseGroup.Get("/:id", validators.CourseID(), controllers.GetCourseDetails)

	// Course management (instructors; ownership checked on the loaded row)
	courseGroup.Post("/", middleware.RequireRole(models.RoleInstructor), validators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Put("/:id", middleware.RequireRole(models.RoleInstructor), validators.CourseID(), validators.UpdateCourse(), controllers.UpdateCourse)
	courseGroup.Delete("/:id", middleware.RequireRole(models.RoleInstructor), validators.CourseID(), controllers.DeleteCourse)

	// Lessons nested under their course
	courseGroup.Get("/:courseId/lessons", validators.ParentCourseID(), controllers.GetCourseLessons)
	courseGroup.Post("/:courseId/lessons", middleware.RequireRole(models.RoleInstructor), validators.ParentCourseID(), validators.CreateLesson(), controllers.CreateLesson)

	// Per-course progress (enrolled students)
	courseGroup.Get("/:courseId/progress", middleware.RequireRole(models.RoleStudent), progressValidator.CourseProgress(), progressController.GetCourseProgress)

	// Lesson mutation by lesson id; ownership resolves via the parent course
	lessonGroup := app.Group("/api/lessons", middleware.JWTMiddleware, middleware.RequireRole(models.RoleInstructor))
	lessonGroup.Put("/:id", validators.LessonID(), validators.UpdateLesson(), controllers.UpdateLesson)
	lessonGroup.Delete("/:id", validators.LessonID(), controllers.DeleteLesson)
}
