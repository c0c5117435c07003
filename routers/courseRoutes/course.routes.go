package courseRoutes

import (
	controllers "skillchain/controllers/course"
	"skillchain/middleware"
	validators "skillchain/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App, h *controllers.CourseHandler) {
	userGroup := app.Group("/course")

	// Catalog
	userGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), h.GetAllCourses)
	userGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseParam("id"), h.GetCourseDetails)

	// Free enrollment; paid courses enroll through /payments
	userGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.CourseParam("id"), h.EnrollInCourse)

	// Progress tracking
	userGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.LessonComplete(), h.MarkLessonComplete)
	userGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.CourseParam("course_id"), h.GetUserProgress)

	// Certificate claim
	userGroup.Post("/:course_id/certificate", middleware.JWTMiddleware, validators.CourseParam("course_id"), h.ClaimCertificate)

	// User enrollments and certificates
	userEnrollGroup := app.Group("/user")
	userEnrollGroup.Get("/enrollments", middleware.JWTMiddleware, h.GetEnrollments)
	userEnrollGroup.Get("/certificates", middleware.JWTMiddleware, h.GetUserCertificates)
}
