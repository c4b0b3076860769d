package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v74/webhook"
	"github.com/vintageai/vintageai-backend/internal/models"
	"github.com/vintageai/vintageai-backend/internal/service"
	"github.com/vintageai/vintageai-backend/pkg/utils"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	validator      *utils.Validator
	webhookSecret  string
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, validator *utils.Validator, webhookSecret string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validator:      validator,
		webhookSecret:  webhookSecret,
		logger:         logger,
	}
}

// CreatePayment starts a hosted checkout. Auth is optional: guests can
// buy credits and get matched by email later.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var req models.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "priceId and packageType are required",
		})
	}

	userID, _ := c.Locals("userID").(string)
	email, _ := c.Locals("userEmail").(string)

	url, err := h.paymentService.CreateCheckoutSession(userID, email, req.PriceID, req.PackageType)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"url": url,
	})
}

func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	var req models.VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	result, err := h.paymentService.VerifyPayment(req.SessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"credits_added": result.CreditsAdded,
		"message":       result.Message,
	})
}

func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	event, err := webhook.ConstructEventWithOptions(
		c.Body(),
		c.Get("Stripe-Signature"),
		h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.logger.Warn("rejected stripe webhook", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid webhook signature",
		})
	}

	if err := h.paymentService.HandleStripeWebhook(&event); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *PaymentHandler) GetPurchaseHistory(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "user not authenticated",
		})
	}

	purchases, err := h.paymentService.GetUserPurchaseHistory(userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(purchases)
}
