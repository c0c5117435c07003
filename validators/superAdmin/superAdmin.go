package superAdminValidator

import (
	"strings"

	"skillchain/middleware"
	"skillchain/models"
	"skillchain/validators"

	"github.com/gofiber/fiber/v2"
)

func PermissionByUserID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Query("userId"))
		if userID == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"userId": "userId is required!"})
		}

		c.Locals("validatedUserId", userID)
		return c.Next()
	}
}

type GrantRequest struct {
	UserID     string `json:"userId" validate:"required"`
	Permission string `json:"permission" validate:"required"`
}

// GrantPermission accepts only permissions the platform checks
func GrantPermission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GrantRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.UserID = strings.TrimSpace(reqData.UserID)
		reqData.Permission = strings.TrimSpace(reqData.Permission)

		errors := validators.Struct(reqData)
		if reqData.Permission != "" && !models.IsKnownPermission(reqData.Permission) {
			errors["permission"] = "Unknown permission!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGrant", reqData)
		return c.Next()
	}
}
