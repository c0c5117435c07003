package instructorController

import (
	"time"

	"skillchain/middleware"
	"skillchain/services/stats"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type InstructorHandler struct {
	DB *gorm.DB
}

// GetStats returns the calling instructor's dashboard
func (h *InstructorHandler) GetStats(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	dashboard, err := stats.Dashboard(c.UserContext(), h.DB, userID, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stats fetched successfully!", dashboard)
}
