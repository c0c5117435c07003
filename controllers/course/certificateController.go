package controllers

import (
	"skillchain/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetUserCertificates gets all certificates for the current user
func (h *CourseHandler) GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	certificates, err := h.Certificates.ListForUser(c.UserContext(), userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
	})
}

// ClaimCertificate issues the certificate for a completed course if it is
// not already there.
func (h *CourseHandler) ClaimCertificate(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(string)

	issued, err := h.Certificates.IssueIfComplete(c.UserContext(), userID, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	status := fiber.StatusOK
	if issued.Created {
		status = fiber.StatusCreated
	}
	return middleware.JsonResponse(c, status, true, "Certificate issued successfully!", issued.Certificate)
}
