package progressController

import (
	"errors"
	"log"
	"time"

	"lms/audit"
	"lms/database"
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UpsertProgress toggles completion state for one (student, lesson) pair.
// Both transitions are always legal and repeating one is a no-op.
func UpsertProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedProgress").(*struct {
		LessonID  uint `json:"lesson_id"`
		Completed bool `json:"completed"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var lesson models.Lesson
	if err := database.Database.Db.First(&lesson, reqData.LessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	// Enrollment gate: the student must hold an enrollment in the lesson's
	// parent course.
	var enrollment models.Enrollment
	if err := database.Database.Db.Where("student_id = ? AND course_id = ?", userID, lesson.CourseID).
		First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}

	var progress models.Progress
	err := database.Database.Db.Where("student_id = ? AND lesson_id = ?", userID, reqData.LessonID).
		First(&progress).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		progress = models.Progress{
			StudentID: userID,
			LessonID:  reqData.LessonID,
			Completed: reqData.Completed,
		}
		if reqData.Completed {
			now := time.Now()
			progress.CompletedAt = &now
		}
		if err := database.Database.Db.Create(&progress).Error; err != nil {
			// A concurrent upsert got there first; fall through to update.
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				log.Printf("Error creating progress: %v", err)
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
			}
			if err := database.Database.Db.Where("student_id = ? AND lesson_id = ?", userID, reqData.LessonID).
				First(&progress).Error; err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
			}
			if err := applyToggle(&progress, reqData.Completed); err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
			}
		}
	case err != nil:
		log.Printf("Error loading progress: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	default:
		if err := applyToggle(&progress, reqData.Completed); err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
		}
	}

	var current models.Progress
	if err := database.Database.Db.First(&current, progress.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}

	audit.Record(&userID, audit.ActionProgressUpdated, audit.ResourceProgress, &current.ID, middleware.ClientAddress(c))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", current)
}

// applyToggle writes the requested completion state. Completion history is
// not retained: flipping back to incomplete clears the timestamp.
func applyToggle(progress *models.Progress, completed bool) error {
	if progress.Completed == completed {
		return nil
	}

	progress.Completed = completed
	if completed {
		now := time.Now()
		progress.CompletedAt = &now
	} else {
		progress.CompletedAt = nil
	}

	// Save skips nil fields through struct updates, so clear explicitly.
	return database.Database.Db.Model(progress).
		Select("completed", "completed_at").
		Updates(map[string]interface{}{
			"completed":    progress.Completed,
			"completed_at": progress.CompletedAt,
		}).Error
}

// GetCourseProgress lists the student's progress rows for one course's
// lessons in advisory lesson order.
func GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var enrollment models.Enrollment
	if err := database.Database.Db.Where("student_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}

	var progress []models.Progress
	if err := database.Database.Db.Model(&models.Progress{}).
		Select("progresses.*").
		Joins("JOIN lessons ON lessons.id = progresses.lesson_id").
		Where("progresses.student_id = ? AND lessons.course_id = ?", userID, courseID).
		Order("lessons.order_index asc, lessons.id asc").
		Scan(&progress).Error; err != nil {
		log.Printf("Error fetching progress: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", progress)
}
