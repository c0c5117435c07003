package paymentValidator

import (
	"strings"

	"skillchain/middleware"
	"skillchain/validators"

	"github.com/gofiber/fiber/v2"
)

type InitializeRequest struct {
	CourseID  string `json:"courseId" validate:"required"`
	UserEmail string `json:"userEmail" validate:"omitempty,email"`
}

// InitializePayment validates a checkout request. Price, fees and instructor
// are always taken from the catalog, so only the course and email are read.
func InitializePayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(InitializeRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.CourseID = strings.TrimSpace(reqData.CourseID)
		reqData.UserEmail = strings.TrimSpace(reqData.UserEmail)
		if reqData.UserEmail == "" {
			reqData.UserEmail = middleware.UserEmail(c)
		}

		errors := validators.Struct(reqData)
		if reqData.UserEmail == "" {
			errors["userEmail"] = "userEmail is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedInitialize", reqData)
		return c.Next()
	}
}

type VerifyRequest struct {
	Reference string `json:"reference" validate:"required,max=100,printascii,excludesall=/?#%&"`
}

// VerifyPayment validates the reference query parameter. References are
// opaque tokens, so path and query delimiters are refused.
func VerifyPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &VerifyRequest{Reference: strings.TrimSpace(c.Query("reference"))}
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("reference", reqData.Reference)
		return c.Next()
	}
}

type PayoutAccountRequest struct {
	BusinessName     string  `json:"businessName" validate:"required"`
	BankCode         string  `json:"bankCode" validate:"required"`
	AccountNumber    string  `json:"accountNumber" validate:"required,numeric,len=10"`
	PercentageCharge float64 `json:"percentageCharge" validate:"gte=0,lte=100"`
}

// PayoutAccount validates an instructor settlement account
func PayoutAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PayoutAccountRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPayoutAccount", reqData)
		return c.Next()
	}
}
