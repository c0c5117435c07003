package paymentController

import (
	"errors"
	"fmt"

	"skillchain/apperrors"
	"skillchain/logger"
	"skillchain/middleware"
	"skillchain/services/gateway"
	"skillchain/services/payments"
	paymentValidator "skillchain/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// Signature headers, in order of preference
var signatureHeaders = []string{"x-signature", "x-paystack-signature"}

type PaymentHandler struct {
	Payments *payments.Service
}

// InitializePayment starts a checkout for the caller
func (h *PaymentHandler) InitializePayment(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedInitialize").(*paymentValidator.InitializeRequest)

	res, err := h.Payments.InitializeCheckout(c.UserContext(), payments.CheckoutRequest{
		UserID:    userID,
		UserEmail: reqData.UserEmail,
		CourseID:  reqData.CourseID,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment initialized successfully!", fiber.Map{
		"reference":        res.Reference,
		"authorizationUrl": res.AuthorizationURL,
	})
}

// VerifyPayment checks a reference with the gateway and records it when paid
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reference := c.Locals("reference").(string)
	notFound := fmt.Errorf("payment %s: %w", reference, apperrors.ErrNotFound)

	// Other users' references look the same as unknown ones
	owner, err := h.Payments.SessionOwner(c.UserContext(), reference)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if owner != "" && owner != userID {
		return middleware.ErrorResponse(c, notFound)
	}

	out, err := h.Payments.VerifyReference(c.UserContext(), reference)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if out.UserID != "" && out.UserID != userID {
		return middleware.ErrorResponse(c, notFound)
	}

	message := "Payment verified successfully!"
	if out.Status != payments.VerifySuccess {
		message = "Payment not completed"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"status":    out.Status,
		"courseId":  out.CourseID,
		"userId":    out.UserID,
		"reference": out.Reference,
		"data":      out.Transaction,
	})
}

// Webhook receives gateway events. Responses are bare JSON for the gateway:
// 200 acknowledges, 4xx drops the delivery, 5xx asks for a retry.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	log := logger.For("webhook")

	signature := ""
	for _, name := range signatureHeaders {
		if signature = c.Get(name); signature != "" {
			break
		}
	}

	// The signature covers the exact bytes received
	raw := append([]byte(nil), c.Body()...)

	_, err := h.Payments.HandleWebhook(c.UserContext(), raw, signature)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	case errors.Is(err, apperrors.ErrInvalidSignature):
		log.Warn().Str("ip", c.IP()).Msg("webhook signature rejected")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid signature"})
	case apperrors.IsDomain(err):
		log.Warn().Err(err).Msg("webhook not applied")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		log.Error().Err(err).Msg("webhook processing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Webhook processing failed"})
	}
}

// CreatePayoutAccount registers the calling instructor's settlement account
func (h *PaymentHandler) CreatePayoutAccount(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedPayoutAccount").(*paymentValidator.PayoutAccountRequest)

	account, err := h.Payments.CreatePayoutAccount(c.UserContext(), userID, gateway.SubaccountRequest{
		BusinessName:     reqData.BusinessName,
		BankCode:         reqData.BankCode,
		AccountNumber:    reqData.AccountNumber,
		PercentageCharge: reqData.PercentageCharge,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payout account saved successfully!", account)
}
