package jobController

import (
	"skillchain/middleware"
	"skillchain/services/bidding"
	jobValidator "skillchain/validators/job"

	"github.com/gofiber/fiber/v2"
)

type JobHandler struct {
	Bids *bidding.Service
}

// PlaceBid places the caller's bid on a job
func (h *JobHandler) PlaceBid(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	jobID := c.Locals("jobID").(string)
	reqData := c.Locals("validatedBid").(*jobValidator.BidRequest)

	bid, err := h.Bids.PlaceBid(c.UserContext(), bidding.BidRequest{
		JobID:        jobID,
		FreelancerID: userID,
		Amount:       reqData.Amount,
		Proposal:     reqData.Proposal,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Bid placed successfully!", bid)
}

// ListBids lists the bids on a job
func (h *JobHandler) ListBids(c *fiber.Ctx) error {
	bids, err := h.Bids.ListBids(c.UserContext(), c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bids fetched successfully!", fiber.Map{
		"bids":  bids,
		"total": len(bids),
	})
}
