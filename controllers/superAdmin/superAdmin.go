package superAdminController

import (
	"skillchain/middleware"
	"skillchain/models"
	"skillchain/services/reconcile"
	superAdminValidator "skillchain/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminHandler struct {
	DB   *gorm.DB
	Jobs *reconcile.Scheduler
}

// RunReconcile runs payment reconciliation and the counter rebuild immediately
func (h *AdminHandler) RunReconcile(c *fiber.Ctx) error {
	summary, err := h.Jobs.RunNow(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reconciliation finished.", summary)
}

// PermissionsByUserID lists the active permissions of a user
func (h *AdminHandler) PermissionsByUserID(c *fiber.Ctx) error {
	userID := c.Locals("validatedUserId").(string)

	var permissions []models.Permission
	if err := h.DB.WithContext(c.UserContext()).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("id").
		Find(&permissions).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	names := make([]string, 0, len(permissions))
	for _, p := range permissions {
		names = append(names, p.Permission)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permissions fetched.", fiber.Map{
		"userId":      userID,
		"permissions": names,
	})
}

// GrantPermission gives a user a named permission. Granting twice is a no-op.
func (h *AdminHandler) GrantPermission(c *fiber.Ctx) error {
	reqData := c.Locals("validatedGrant").(*superAdminValidator.GrantRequest)

	db := h.DB.WithContext(c.UserContext())

	var existing models.Permission
	err := db.Where("user_id = ? AND permission = ? AND is_deleted = ?", reqData.UserID, reqData.Permission, false).
		Limit(1).Find(&existing).Error
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if existing.ID != 0 {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Permission already granted.", existing)
	}

	permission := models.Permission{UserID: reqData.UserID, Permission: reqData.Permission}
	if err := db.Create(&permission).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Permission granted.", permission)
}
