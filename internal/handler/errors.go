package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/vintageai/vintageai-backend/internal/service"
	"github.com/vintageai/vintageai-backend/pkg/kie"
)

// errorResponse maps service-level failures onto status codes and the
// bare {error} body the SPA expects. The credits-exhausted cases get 402
// so the UI can render its purchase call-to-action.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrPromptRequired),
		errors.Is(err, service.ErrImageInputRequired),
		errors.Is(err, service.ErrInvalidPriceID),
		errors.Is(err, service.ErrPackageMismatch),
		errors.Is(err, service.ErrUnknownPackage):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrInsufficientVideoCredits),
		errors.Is(err, service.ErrInsufficientImageCredits),
		errors.Is(err, service.ErrPaymentNotCompleted):
		status = fiber.StatusPaymentRequired
	case errors.Is(err, service.ErrJobNotFound):
		status = fiber.StatusNotFound
	default:
		var apiErr *kie.APIError
		if errors.As(err, &apiErr) {
			status = fiber.StatusBadGateway
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// currentUser pulls the identity the auth middleware stored.
func currentUser(c *fiber.Ctx) (string, string, bool) {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return "", "", false
	}
	email, _ := c.Locals("userEmail").(string)
	return userID, email, true
}
