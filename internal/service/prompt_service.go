package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vintageai/vintageai-backend/internal/models"
	"go.uber.org/zap"
)

// TextCompleter is the slice of the AI gateway used for prompt writing.
type TextCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const maxPromptLength = 512

const promptSystemMessage = `You are an expert at writing prompts for video generation from vintage photographs. Produce one precise, detailed prompt that:

1. PRESERVES FACES: if people are visible, always include wording like "preserve facial features exactly, maintain face identity, no face morphing".
2. PRESERVES THE ERA: match the decade's film quality, color palette and grain.
3. FOCUSES ON MOTION: describe exactly which elements move and how, based on the desired movement.
4. MATCHES STYLE: adjust the wording to the desired style.
5. APPLIES FEEDBACK: if the user gives feedback on the current prompt, adjust accordingly.

Rules: at most 512 characters; focus on action and movement, not static description; include period-appropriate technical detail (e.g. "grainy 1980s VHS quality"). Reply with the generated prompt only, no other text.`

// PromptService turns structured photo descriptions into motion prompts
// for the video provider.
type PromptService struct {
	completer TextCompleter
	logger    *zap.Logger
}

func NewPromptService(completer TextCompleter, logger *zap.Logger) *PromptService {
	return &PromptService{
		completer: completer,
		logger:    logger,
	}
}

func (s *PromptService) EnhancePrompt(ctx context.Context, req models.EnhancePromptRequest) (string, error) {
	userMessage := fmt.Sprintf(
		"Write a prompt for:\nDecade: %s\nMain subject: %s\nImage description: %s\nDesired movement: %s\nDesired style: %s\nFeedback on current prompt: %s",
		req.ImageDecade,
		req.MainSubject,
		req.ImageDescription,
		req.DesiredMovement,
		req.DesiredStyle,
		req.CurrentPromptFeedback,
	)

	prompt, err := s.completer.Complete(ctx, promptSystemMessage, userMessage)
	if err != nil {
		return "", fmt.Errorf("prompt provider: %w", err)
	}

	prompt = strings.TrimSpace(prompt)
	if len(prompt) > maxPromptLength {
		prompt = prompt[:maxPromptLength]
	}
	return prompt, nil
}
