package instructorRoutes

import (
	instructorController "skillchain/controllers/instructor"
	"skillchain/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupInstructorRoutes(app *fiber.App, h *instructorController.InstructorHandler) {
	instructorGroup := app.Group("/instructor")

	instructorGroup.Get("/stats", middleware.JWTMiddleware, h.GetStats)
}
