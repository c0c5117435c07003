package superAdminRoutes

import (
	superAdminController "skillchain/controllers/superAdmin"
	"skillchain/middleware"
	"skillchain/models"
	superAdminValidator "skillchain/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
)

func SetupSuperAdminRoutes(app *fiber.App, h *superAdminController.AdminHandler) {
	adminGroup := app.Group("/admin")

	adminGroup.Post("/payments/reconcile", middleware.JWTMiddleware, middleware.CheckPermissionMiddleware(h.DB, models.PermissionReconcilePayments), h.RunReconcile)
	adminGroup.Get("/permission", middleware.JWTMiddleware, middleware.CheckPermissionMiddleware(h.DB, models.PermissionManagePermissions), superAdminValidator.PermissionByUserID(), h.PermissionsByUserID)
	adminGroup.Post("/permission", middleware.JWTMiddleware, middleware.CheckPermissionMiddleware(h.DB, models.PermissionManagePermissions), superAdminValidator.GrantPermission(), h.GrantPermission)
}
