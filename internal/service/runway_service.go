package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/vintageai/vintageai-backend/internal/models"
	"github.com/vintageai/vintageai-backend/pkg/runway"
	"go.uber.org/zap"
)

const runwayModel = "gen3a_turbo"

// RunwayService is the direct-provider passthrough path. It keeps no job
// records; the client polls the task id it gets back, as the provider's
// retention makes the gateway-side sweep unnecessary here.
type RunwayService struct {
	client *runway.Client
	logger *zap.Logger
}

func NewRunwayService(client *runway.Client, logger *zap.Logger) *RunwayService {
	return &RunwayService{
		client: client,
		logger: logger,
	}
}

// GenerateVideo uploads a data-URI input image when present and starts an
// image-to-video task.
func (s *RunwayService) GenerateVideo(ctx context.Context, req models.RunwayGenerateRequest) (*runway.Task, error) {
	assetID := req.ImageAssetID

	if strings.HasPrefix(req.ImageURL, "data:image") {
		matches := dataURIPattern.FindStringSubmatch(req.ImageURL)
		if matches == nil {
			return nil, fmt.Errorf("invalid data uri image")
		}
		data, err := base64.StdEncoding.DecodeString(matches[2])
		if err != nil {
			return nil, fmt.Errorf("invalid image encoding: %w", err)
		}

		assetID, err = s.client.UploadAsset(ctx, data, "image/png")
		if err != nil {
			return nil, err
		}
		s.logger.Info("input image uploaded to runway", zap.String("asset_id", assetID))
	}

	ratio := req.AspectRatio
	if ratio == "" {
		ratio = defaultAspect
	}

	return s.client.CreateImageToVideo(ctx, runway.ImageToVideoRequest{
		Model:       runwayModel,
		PromptImage: assetID,
		PromptText:  req.TextPrompt,
		Duration:    videoDuration,
		Ratio:       ratio,
		Watermark:   false,
	})
}

func (s *RunwayService) TaskStatus(ctx context.Context, taskID string) (*runway.Task, error) {
	return s.client.GetTask(ctx, taskID)
}
