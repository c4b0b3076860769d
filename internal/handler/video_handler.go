package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vintageai/vintageai-backend/internal/models"
	"github.com/vintageai/vintageai-backend/internal/service"
	"github.com/vintageai/vintageai-backend/pkg/utils"
)

type VideoHandler struct {
	videoService  *service.VideoService
	promptService *service.PromptService
	validator     *utils.Validator
	cronSecret    string
}

func NewVideoHandler(videoService *service.VideoService, promptService *service.PromptService, validator *utils.Validator, cronSecret string) *VideoHandler {
	return &VideoHandler{
		videoService:  videoService,
		promptService: promptService,
		validator:     validator,
		cronSecret:    cronSecret,
	}
}

func (h *VideoHandler) GenerateVideo(c *fiber.Ctx) error {
	userID, email, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "user not authenticated",
		})
	}

	var req models.GenerateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errorResponse(c, service.ErrPromptRequired)
	}

	job, err := h.videoService.GenerateVideo(c.Context(), userID, email, req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"generation_id": job.GenerationID,
		"status":        job.Status,
	})
}

func (h *VideoHandler) CheckStatus(c *fiber.Ctx) error {
	userID, _, ok := currentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "user not authenticated",
		})
	}

	var req models.CheckVideoStatusRequest
	if err := c.BodyParser(&req); err != nil || req.GenerationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "generation_id is required",
		})
	}

	job, err := h.videoService.CheckStatus(c.Context(), userID, req.GenerationID)
	if err != nil {
		return errorResponse(c, err)
	}

	var videoURL interface{}
	if job.VideoURL != "" {
		videoURL = job.VideoURL
	}
	return c.JSON(fiber.Map{
		"status":    job.Status,
		"video_url": videoURL,
		"progress":  job.Progress,
	})
}

// PollVideoStatus is the sweep trigger for the external scheduler. It is
// unauthenticated user-wise but requires the cron secret.
func (h *VideoHandler) PollVideoStatus(c *fiber.Ctx) error {
	if h.cronSecret == "" || c.Get("X-Cron-Secret") != h.cronSecret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid cron secret",
		})
	}

	processed, err := h.videoService.PollPendingJobs(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"processed": processed,
	})
}

func (h *VideoHandler) EnhancePrompt(c *fiber.Ctx) error {
	if _, _, ok := currentUser(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "user not authenticated",
		})
	}

	var req models.EnhancePromptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "main_subject is required",
		})
	}

	prompt, err := h.promptService.EnhancePrompt(c.Context(), req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"prompt": prompt,
	})
}
