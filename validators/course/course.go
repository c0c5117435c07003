package courseValidator

import (
	"strings"

	"skillchain/middleware"

	"github.com/gofiber/fiber/v2"
)

// CourseParam validates the course id route parameter
func CourseParam(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID := strings.TrimSpace(c.Params(name))
		if courseID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// LessonComplete validates marking a lesson. A missing "completed" means true.
func LessonComplete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID := strings.TrimSpace(c.Params("course_id"))
		lessonID := strings.TrimSpace(c.Params("lesson_id"))

		reqData := new(struct {
			Completed *bool `json:"completed"`
		})
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		errors := make(map[string]string)
		if courseID == "" {
			errors["course_id"] = "Course ID is required!"
		}
		if lessonID == "" {
			errors["lesson_id"] = "Lesson ID is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		completed := true
		if reqData.Completed != nil {
			completed = *reqData.Completed
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		c.Locals("completed", completed)
		return c.Next()
	}
}

// CourseList validates the page and limit query parameters
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 20)

		errors := make(map[string]string)
		if page < 1 {
			errors["page"] = "page must be at least 1!"
		}
		if limit < 1 || limit > 100 {
			errors["limit"] = "limit must be between 1 and 100!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("page", page)
		c.Locals("limit", limit)
		return c.Next()
	}
}
