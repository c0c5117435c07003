package jobRoutes

import (
	jobController "skillchain/controllers/job"
	"skillchain/middleware"
	jobValidator "skillchain/validators/job"

	"github.com/gofiber/fiber/v2"
)

func SetupJobRoutes(app *fiber.App, h *jobController.JobHandler) {
	jobGroup := app.Group("/jobs")

	jobGroup.Post("/:id/bids", middleware.JWTMiddleware, jobValidator.PlaceBid(), h.PlaceBid)
	jobGroup.Get("/:id/bids", middleware.JWTMiddleware, h.ListBids)
}
