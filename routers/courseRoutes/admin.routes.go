package courseRoutes

import (
	controllers "skillchain/controllers/course"
	"skillchain/middleware"
	"skillchain/models"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up catalog management routes
func SetupAdminCourseRoutes(app *fiber.App, h *controllers.CourseHandler) {
	adminGroup := app.Group("/admin/catalog")

	adminGroup.Post("/import", middleware.JWTMiddleware, middleware.CheckPermissionMiddleware(h.DB, models.PermissionImportCatalog), h.AdminImportCatalog)
}
