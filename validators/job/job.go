package jobValidator

import (
	"strings"

	"skillchain/middleware"
	"skillchain/validators"

	"github.com/gofiber/fiber/v2"
)

type BidRequest struct {
	Amount   float64 `json:"amount" validate:"gt=0"`
	Proposal string  `json:"proposal" validate:"max=5000"`
}

// PlaceBid validates a bid on the job in the :id route parameter
func PlaceBid() fiber.Handler {
	return func(c *fiber.Ctx) error {
		jobID := strings.TrimSpace(c.Params("id"))
		if jobID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Job ID is required!", nil)
		}

		reqData := new(BidRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("jobID", jobID)
		c.Locals("validatedBid", reqData)
		return c.Next()
	}
}
