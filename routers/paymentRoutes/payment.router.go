package paymentRoutes

import (
	paymentController "skillchain/controllers/payment"
	"skillchain/middleware"
	paymentValidator "skillchain/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App, h *paymentController.PaymentHandler) {
	paymentGroup := app.Group("/payments")

	paymentGroup.Post("/initialize", middleware.JWTMiddleware, paymentValidator.InitializePayment(), h.InitializePayment)
	paymentGroup.Get("/verify", middleware.JWTMiddleware, paymentValidator.VerifyPayment(), h.VerifyPayment)
	paymentGroup.Post("/payout-account", middleware.JWTMiddleware, paymentValidator.PayoutAccount(), h.CreatePayoutAccount)

	// Authenticated by the gateway signature, not a JWT
	paymentGroup.Post("/webhook", h.Webhook)
}
