package controllers

import (
	"skillchain/middleware"

	"github.com/gofiber/fiber/v2"
)

// MarkLessonComplete sets or clears a lesson and returns the new progress
func (h *CourseHandler) MarkLessonComplete(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(string)
	lessonID := c.Locals("lessonID").(string)
	completed := c.Locals("completed").(bool)

	snap, err := h.Tracker.MarkLessonComplete(c.UserContext(), userID, courseID, lessonID, completed)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	message := "Lesson progress updated!"
	if snap.Progress == 100 && snap.Certificate != nil {
		message = "Course completed! Certificate issued."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, snap)
}

// GetUserProgress returns the caller's progress in a course
func (h *CourseHandler) GetUserProgress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(string)

	snap, err := h.Tracker.GetProgress(c.UserContext(), userID, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", snap)
}
