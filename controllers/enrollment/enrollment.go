package enrollmentController

import (
	"errors"
	"log"
	"time"

	"lms/audit"
	"lms/database"
	"lms/middleware"
	"lms/models"
	enrollmentValidator "lms/validators/enrollment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EnrollmentWithCourse is an enrollment joined with its course summary.
type EnrollmentWithCourse struct {
	models.Enrollment
	CourseTitle       string `json:"course_title"`
	CourseDescription string `json:"course_description"`
}

func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedEnrollment").(*struct {
		CourseID uint `json:"course_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course models.Course
	if err := database.Database.Db.First(&course, reqData.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Pre-check produces the clean 409 in the common case; the unique index
	// is the authoritative guard under concurrency.
	var existing models.Enrollment
	if err := database.Database.Db.Where("student_id = ? AND course_id = ?", userID, reqData.CourseID).
		First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course!", nil)
	}

	enrollment := models.Enrollment{
		StudentID:  userID,
		CourseID:   reqData.CourseID,
		EnrolledAt: time.Now(),
	}

	if err := database.Database.Db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course!", nil)
		}
		log.Printf("Error creating enrollment: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	var created models.Enrollment
	if err := database.Database.Db.First(&created, enrollment.ID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	audit.Record(&userID, audit.ActionEnrollmentCreated, audit.ResourceEnrollment, &created.ID, middleware.ClientAddress(c))

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", created)
}

func GetEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedEnrollmentList").(*enrollmentValidator.PageRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&models.Enrollment{}).
		Select("enrollments.*, courses.title AS course_title, courses.description AS course_description").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.student_id = ?", userID)

	var total int64
	db.Count(&total)

	var enrollments []EnrollmentWithCourse
	if err := db.Order("enrollments.enrolled_at desc").
		Offset(reqData.Offset()).Limit(reqData.Limit).
		Scan(&enrollments).Error; err != nil {
		log.Printf("Error fetching enrollments: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	response := map[string]interface{}{
		"enrollments": enrollments,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", response)
}

func DeleteEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(uint)

	var enrollment models.Enrollment
	if err := database.Database.Db.First(&enrollment, enrollmentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	if enrollment.StudentID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this enrollment!", nil)
	}

	if err := database.Database.Db.Delete(&enrollment).Error; err != nil {
		log.Printf("Error deleting enrollment %d: %v", enrollmentID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete enrollment!", nil)
	}

	audit.Record(&userID, audit.ActionEnrollmentDeleted, audit.ResourceEnrollment, &enrollmentID, middleware.ClientAddress(c))

	return c.SendStatus(fiber.StatusNoContent)
}
