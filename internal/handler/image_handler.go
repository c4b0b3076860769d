package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vintageai/vintageai-backend/internal/models"
	"github.com/vintageai/vintageai-backend/internal/service"
)

type ImageHandler struct {
	imageService *service.ImageService
}

func NewImageHandler(imageService *service.ImageService) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
	}
}

func (h *ImageHandler) GenerateImage(c *fiber.Ctx) error {
	userID, email, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "user not authenticated",
		})
	}

	var req models.GenerateImageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	imageURL, err := h.imageService.GenerateImage(c.Context(), userID, email, req.Prompt, req.ImageURL)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"imageUrl": imageURL,
	})
}
