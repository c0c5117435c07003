package middleware

import (
	"errors"
	"net/http"

	"skillchain/apperrors"
	"skillchain/logger"

	"github.com/gofiber/fiber/v2"
)

var errorStatus = []struct {
	target  error
	status  int
	message string
}{
	{apperrors.ErrAlreadyBid, fiber.StatusBadRequest, "You have already bid on this job"},
	{apperrors.ErrNotEnrolled, fiber.StatusForbidden, "User not enrolled in this course!"},
	{apperrors.ErrNotFound, fiber.StatusNotFound, "Resource not found!"},
	{apperrors.ErrNotComplete, fiber.StatusBadRequest, "Please complete the course first!"},
	{apperrors.ErrPaymentRequired, fiber.StatusPaymentRequired, "Payment required for this course!"},
	{apperrors.ErrFreeCourse, fiber.StatusBadRequest, "This course is free, enroll directly!"},
	{apperrors.ErrAmountMismatch, fiber.StatusBadRequest, "Paid amount does not match the course price!"},
	{apperrors.ErrJobClosed, fiber.StatusBadRequest, "This job is no longer accepting bids!"},
	{apperrors.ErrOwnJob, fiber.StatusBadRequest, "You cannot bid on your own job!"},
	{apperrors.ErrAlreadyExists, fiber.StatusConflict, "Resource already exists!"},
	{apperrors.ErrInvalidTransition, fiber.StatusConflict, "Operation not allowed in the current state!"},
	{apperrors.ErrConflict, fiber.StatusConflict, "Concurrent update, please retry!"},
	{apperrors.ErrInvalidSignature, fiber.StatusUnauthorized, "Invalid signature"},
}

// ErrorResponse maps a service error onto the response envelope. Unknown
// errors are logged and answered with a generic 500.
func ErrorResponse(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.target) {
			return JsonResponse(c, e.status, false, e.message, nil)
		}
	}

	var gwErr *apperrors.GatewayError
	if errors.As(err, &gwErr) {
		status := fiber.StatusBadGateway
		if gwErr.StatusCode >= 400 && gwErr.StatusCode < 500 {
			status = fiber.StatusBadRequest
		}
		if gwErr.StatusCode == http.StatusServiceUnavailable {
			status = fiber.StatusServiceUnavailable
		}
		return JsonResponse(c, status, false, gwErr.Message, nil)
	}

	log := logger.For("http")
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong, please try again!", nil)
}
