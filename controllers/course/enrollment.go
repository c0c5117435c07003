package controllers

import (
	"skillchain/middleware"
	"skillchain/services/certificate"
	"skillchain/services/enrollment"
	"skillchain/services/progress"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CourseHandler serves the learner side of courses
type CourseHandler struct {
	DB           *gorm.DB
	Enroller     *enrollment.Writer
	Tracker      *progress.Tracker
	Certificates *certificate.Issuer
	UploadDir    string // catalog uploads are archived here when set
}

// EnrollInCourse enrolls the caller in a free course. Paid courses go through checkout.
func (h *CourseHandler) EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(string)

	res, err := h.Enroller.EnrollFree(c.UserContext(), userID, middleware.UserEmail(c), courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if !res.Created {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Already enrolled in this course!", res.Enrollment)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", res.Enrollment)
}

// GetEnrollments lists the caller's enrollments
func (h *CourseHandler) GetEnrollments(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollments, err := enrollment.ListForUser(c.UserContext(), h.DB, userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"total":       len(enrollments),
	})
}
