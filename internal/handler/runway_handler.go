package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vintageai/vintageai-backend/internal/models"
	"github.com/vintageai/vintageai-backend/internal/service"
	"github.com/vintageai/vintageai-backend/pkg/utils"
)

// RunwayHandler exposes the direct-provider passthrough path.
type RunwayHandler struct {
	runwayService *service.RunwayService
	validator     *utils.Validator
}

func NewRunwayHandler(runwayService *service.RunwayService, validator *utils.Validator) *RunwayHandler {
	return &RunwayHandler{
		runwayService: runwayService,
		validator:     validator,
	}
}

func (h *RunwayHandler) GenerateVideo(c *fiber.Ctx) error {
	if _, _, ok := currentUser(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "user not authenticated",
		})
	}

	var req models.RunwayGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text_prompt is required",
		})
	}

	task, err := h.runwayService.GenerateVideo(c.Context(), req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"task_id": task.ID,
		"status":  task.Status,
	})
}

func (h *RunwayHandler) TaskStatus(c *fiber.Ctx) error {
	if _, _, ok := currentUser(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "user not authenticated",
		})
	}

	var req models.RunwayStatusRequest
	if err := c.BodyParser(&req); err != nil || req.TaskID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "task_id is required",
		})
	}

	task, err := h.runwayService.TaskStatus(c.Context(), req.TaskID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(task)
}
