package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vintageai/vintageai-backend/internal/repository"
	"go.uber.org/zap"
)

// ImageGenerator is the slice of the AI gateway client used for inline
// image generation.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, imageURL string) (string, error)
}

// ImageService handles the synchronous image path. Unlike video there is
// no job record: the provider answers inline, so the only state here is
// the ledger, and the contract is decrement-exactly-once-on-success.
type ImageService struct {
	balances  *repository.CreditBalanceRepository
	generator ImageGenerator
	logger    *zap.Logger
}

func NewImageService(balances *repository.CreditBalanceRepository, generator ImageGenerator, logger *zap.Logger) *ImageService {
	return &ImageService{
		balances:  balances,
		generator: generator,
		logger:    logger,
	}
}

// GenerateImage requires at least one of prompt/imageUrl, fails closed on
// an empty image balance, and spends exactly one credit only after the
// provider call succeeds.
func (s *ImageService) GenerateImage(ctx context.Context, userID, email string, prompt, imageURL string) (string, error) {
	if strings.TrimSpace(prompt) == "" && imageURL == "" {
		return "", ErrImageInputRequired
	}

	balance, err := s.balances.GetOrCreate(userID, email)
	if err != nil {
		return "", err
	}
	if balance.ImageCredits < 1 {
		return "", ErrInsufficientImageCredits
	}

	outputURL, err := s.generator.GenerateImage(ctx, prompt, imageURL)
	if err != nil {
		return "", fmt.Errorf("image provider: %w", err)
	}

	if err := s.balances.SpendImageCredit(userID); err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			s.logger.Warn("image credit balance raced to zero after generation",
				zap.String("user_id", userID),
			)
		} else {
			s.logger.Error("failed to spend image credit",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	return outputURL, nil
}
