package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vintageai/vintageai-backend/internal/models"
	"github.com/vintageai/vintageai-backend/internal/repository"
	"github.com/vintageai/vintageai-backend/pkg/kie"
	"github.com/vintageai/vintageai-backend/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	videoDuration    = 5
	videoQuality     = "720p"
	defaultAspect    = "16:9"
	midpointProgress = 50
)

// VideoProvider is the slice of the KIE client the video lifecycle needs.
type VideoProvider interface {
	Generate(ctx context.Context, req kie.GenerateRequest) (string, error)
	RecordDetail(ctx context.Context, taskID string) (*kie.RecordDetail, error)
}

// Relocator copies a provider asset into durable storage, reporting
// whether the copy actually happened.
type Relocator interface {
	Relocate(ctx context.Context, sourceURL, key string) (string, bool)
}

// JobPublisher receives every applied job row change.
type JobPublisher interface {
	PublishJob(userID string, job *models.GenerationJob)
}

var dataURIPattern = regexp.MustCompile(`^data:([^;]+);base64,(.+)$`)

// VideoService owns the video generation lifecycle: submission, status
// reconciliation and the background sweep.
type VideoService struct {
	jobs      *repository.GenerationJobRepository
	balances  *repository.CreditBalanceRepository
	provider  VideoProvider
	relocator Relocator
	store     storage.ObjectStorage
	publisher JobPublisher
	batchSize int
	logger    *zap.Logger
}

func NewVideoService(
	jobs *repository.GenerationJobRepository,
	balances *repository.CreditBalanceRepository,
	provider VideoProvider,
	relocator Relocator,
	store storage.ObjectStorage,
	publisher JobPublisher,
	batchSize int,
	logger *zap.Logger,
) *VideoService {
	return &VideoService{
		jobs:      jobs,
		balances:  balances,
		provider:  provider,
		relocator: relocator,
		store:     store,
		publisher: publisher,
		batchSize: batchSize,
		logger:    logger,
	}
}

// GenerateVideo validates the request, resolves any uploaded input image,
// submits to the provider and persists the job record. One video credit
// is spent per accepted submission; nothing is persisted or spent when
// the provider rejects the call.
func (s *VideoService) GenerateVideo(ctx context.Context, userID, email string, req models.GenerateVideoRequest) (*models.GenerationJob, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrPromptRequired
	}

	balance, err := s.balances.GetOrCreate(userID, email)
	if err != nil {
		return nil, err
	}
	if balance.VideoCredits < 1 {
		return nil, ErrInsufficientVideoCredits
	}

	imageURL := s.resolveInputImage(ctx, userID, req.ImageURL)

	genReq := kie.GenerateRequest{
		Prompt:    req.Prompt,
		Duration:  videoDuration,
		Quality:   videoQuality,
		WaterMark: "",
	}
	if imageURL != "" {
		genReq.ImageURL = imageURL
	} else {
		// Provider requires an aspect ratio for text-only generations.
		genReq.AspectRatio = defaultAspect
	}

	taskID, err := s.provider.Generate(ctx, genReq)
	if err != nil {
		var apiErr *kie.APIError
		if errors.As(err, &apiErr) && providerSaysInsufficientCredits(apiErr.Msg) {
			return nil, ErrInsufficientVideoCredits
		}
		return nil, fmt.Errorf("video provider: %w", err)
	}

	job := &models.GenerationJob{
		GenerationID: taskID,
		UserID:       userID,
		Status:       models.JobStatusSubmitted,
		Progress:     0,
	}
	if err := s.jobs.Create(job); err != nil {
		s.logger.Error("provider accepted job but record creation failed",
			zap.String("generation_id", taskID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.balances.SpendVideoCredit(userID); err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			// Concurrent submissions drained the balance between the
			// upfront check and the spend; the provider already accepted
			// this job so it stands.
			s.logger.Warn("video credit balance raced to zero after submission",
				zap.String("user_id", userID),
				zap.String("generation_id", taskID),
			)
		} else {
			s.logger.Error("failed to spend video credit",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	s.publish(userID, job)
	return job, nil
}

// CheckStatus reconciles one job on behalf of its owner and returns the
// current record.
func (s *VideoService) CheckStatus(ctx context.Context, userID, generationID string) (*models.GenerationJob, error) {
	job, err := s.jobs.GetByID(generationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	if job.UserID != userID {
		return nil, ErrJobNotFound
	}
	return s.Reconcile(ctx, job)
}

// Reconcile reads provider truth for one job and converges the local row.
// It is safe to call redundantly from any trigger: terminal jobs
// short-circuit before any provider call, and every transition is a
// conditional write that excludes terminal states.
func (s *VideoService) Reconcile(ctx context.Context, job *models.GenerationJob) (*models.GenerationJob, error) {
	if job.IsTerminal() {
		return job, nil
	}

	detail, err := s.provider.RecordDetail(ctx, job.GenerationID)
	if err != nil {
		var apiErr *kie.APIError
		if errors.As(err, &apiErr) && apiErr.EnvelopeFailure() {
			// The gateway rejected the task itself; the job will never
			// finish, so record the failure.
			return s.applyPatch(ctx, job, repository.JobPatch{
				Status:       models.JobStatusFailed,
				Progress:     job.Progress,
				ErrorMessage: apiErr.Msg,
			})
		}
		return nil, fmt.Errorf("video provider: %w", err)
	}

	patch, ok := s.reconcilePatch(ctx, job, detail)
	if !ok {
		return job, nil
	}
	return s.applyPatch(ctx, job, patch)
}

// reconcilePatch maps one provider status report onto a job transition.
// The false return means no transition applies (unchanged provider state).
func (s *VideoService) reconcilePatch(ctx context.Context, job *models.GenerationJob, detail *kie.RecordDetail) (repository.JobPatch, bool) {
	videoURL := ""
	if detail.VideoInfo != nil {
		videoURL = detail.VideoInfo.VideoURL
	}

	switch {
	case detail.State == kie.StateSuccess && videoURL != "":
		key := fmt.Sprintf("%s/%s-%d.mp4", job.UserID, job.GenerationID, time.Now().UnixMilli())
		finalURL, relocated := s.relocator.Relocate(ctx, videoURL, key)
		return repository.JobPatch{
			Status:         models.JobStatusCompleted,
			Progress:       100,
			VideoURL:       finalURL,
			VideoRelocated: relocated,
		}, true

	case detail.State == kie.StateFailed || detail.State == kie.StateFail:
		return repository.JobPatch{
			Status:       models.JobStatusFailed,
			Progress:     job.Progress,
			ErrorMessage: detail.FailMsg,
		}, true

	case detail.State == kie.StateSubmitted || detail.State == kie.StateQueued || detail.State == kie.StateGenerating:
		if job.Status == models.JobStatusProcessing && job.Progress == midpointProgress {
			return repository.JobPatch{}, false
		}
		return repository.JobPatch{
			Status:   models.JobStatusProcessing,
			Progress: midpointProgress,
		}, true

	default:
		return repository.JobPatch{}, false
	}
}

func (s *VideoService) applyPatch(ctx context.Context, job *models.GenerationJob, patch repository.JobPatch) (*models.GenerationJob, error) {
	applied, err := s.jobs.ApplyTransition(job.GenerationID, patch)
	if err != nil {
		return nil, err
	}

	updated, err := s.jobs.GetByID(job.GenerationID)
	if err != nil {
		return nil, err
	}
	if applied {
		s.publish(updated.UserID, updated)
	}
	return updated, nil
}

// PollPendingJobs is the background sweep: reconcile up to one batch of
// non-terminal jobs, oldest first. Individual job failures are logged and
// skipped so one stuck job cannot stall the batch.
func (s *VideoService) PollPendingJobs(ctx context.Context) (int, error) {
	pending, err := s.jobs.ListPending(s.batchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	for i := range pending {
		job := &pending[i]
		if _, err := s.Reconcile(ctx, job); err != nil {
			s.logger.Error("sweep failed to reconcile job",
				zap.String("generation_id", job.GenerationID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("sweep finished", zap.Int("processed", len(pending)))
	return len(pending), nil
}

// resolveInputImage turns a data-URI upload into a durable public URL.
// Upload failures degrade to a text-only generation instead of failing
// the whole request.
func (s *VideoService) resolveInputImage(ctx context.Context, userID, imageURL string) string {
	if !strings.HasPrefix(imageURL, "data:image") {
		return imageURL
	}

	matches := dataURIPattern.FindStringSubmatch(imageURL)
	if matches == nil {
		s.logger.Warn("invalid data uri image, continuing without image",
			zap.String("user_id", userID),
		)
		return ""
	}

	mimeType := matches[1]
	data, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		s.logger.Warn("failed to decode image data uri, continuing without image",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return ""
	}

	ext := "jpg"
	if parts := strings.SplitN(mimeType, "/", 2); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}

	key := fmt.Sprintf("%s/%d.%s", userID, time.Now().UnixMilli(), ext)
	if err := s.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		s.logger.Warn("input image upload failed, continuing without image",
			zap.String("user_id", userID),
			zap.String("key", key),
			zap.Error(err),
		)
		return ""
	}
	return s.store.PublicURL(key)
}

func (s *VideoService) publish(userID string, job *models.GenerationJob) {
	if s.publisher != nil {
		s.publisher.PublishJob(userID, job)
	}
}
