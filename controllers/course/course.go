package controllers

import (
	"skillchain/middleware"
	"skillchain/services/catalog"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists published courses
func (h *CourseHandler) GetAllCourses(c *fiber.Ctx) error {
	page := c.Locals("page").(int)
	limit := c.Locals("limit").(int)

	courses, total, err := catalog.ListPublished(c.UserContext(), h.DB, page, limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourseDetails returns a course with its outline
func (h *CourseHandler) GetCourseDetails(c *fiber.Ctx) error {
	detail, err := catalog.Detail(c.UserContext(), h.DB, c.Locals("courseID").(string))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", detail)
}
