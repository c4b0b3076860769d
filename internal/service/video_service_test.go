package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vintageai/vintageai-backend/internal/models"
	"github.com/vintageai/vintageai-backend/internal/repository"
	"github.com/vintageai/vintageai-backend/pkg/kie"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type videoFixture struct {
	svc       *VideoService
	jobs      *repository.GenerationJobRepository
	balances  *repository.CreditBalanceRepository
	provider  *fakeVideoProvider
	relocator *fakeRelocator
	store     *fakeStore
	publisher *fakePublisher
}

func newVideoFixture(t *testing.T, db *gorm.DB) *videoFixture {
	t.Helper()
	f := &videoFixture{
		jobs:      repository.NewGenerationJobRepository(db),
		balances:  repository.NewCreditBalanceRepository(db),
		provider:  &fakeVideoProvider{taskID: "task-1"},
		relocator: &fakeRelocator{},
		store:     newFakeStore(),
		publisher: &fakePublisher{},
	}
	f.svc = NewVideoService(f.jobs, f.balances, f.provider, f.relocator, f.store, f.publisher, 50, zap.NewNop())
	return f
}

func (f *videoFixture) grantVideoCredits(t *testing.T, userID string, n int) {
	t.Helper()
	_, err := f.balances.GetOrCreate(userID, userID+"@example.com")
	require.NoError(t, err)
	require.NoError(t, f.balances.AddCredits(userID, n, 0))
}

func TestGenerateVideoTextOnly(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	f.grantVideoCredits(t, "user-1", 1)

	job, err := f.svc.GenerateVideo(context.Background(), "user-1", "user-1@example.com", models.GenerateVideoRequest{
		Prompt: "a 1950s diner at dusk",
	})
	require.NoError(t, err)
	assert.Equal(t, "task-1", job.GenerationID)
	assert.Equal(t, models.JobStatusSubmitted, job.Status)

	// Text-only submissions carry the default aspect ratio instead of an image.
	assert.Equal(t, "16:9", f.provider.lastGenerate.AspectRatio)
	assert.Empty(t, f.provider.lastGenerate.ImageURL)
	assert.Equal(t, 5, f.provider.lastGenerate.Duration)
	assert.Equal(t, "720p", f.provider.lastGenerate.Quality)

	balance, err := f.balances.GetByUserID("user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, balance.VideoCredits)

	require.Len(t, f.publisher.published, 1)
}

func TestGenerateVideoEmptyPrompt(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))

	_, err := f.svc.GenerateVideo(context.Background(), "user-1", "user-1@example.com", models.GenerateVideoRequest{
		Prompt: "   ",
	})
	assert.ErrorIs(t, err, ErrPromptRequired)
}

func TestGenerateVideoNoCredits(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))

	_, err := f.svc.GenerateVideo(context.Background(), "user-1", "user-1@example.com", models.GenerateVideoRequest{
		Prompt: "sepia street scene",
	})
	assert.ErrorIs(t, err, ErrInsufficientVideoCredits)
	assert.Empty(t, f.provider.lastGenerate.Prompt)
}

func TestGenerateVideoProviderRejection(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	f.grantVideoCredits(t, "user-1", 3)
	f.provider.generateErr = &kie.APIError{HTTPStatus: 500, Code: 500, Msg: "internal error"}

	_, err := f.svc.GenerateVideo(context.Background(), "user-1", "user-1@example.com", models.GenerateVideoRequest{
		Prompt: "sepia street scene",
	})
	require.Error(t, err)

	// A rejected submission leaves no job and costs nothing.
	_, err = f.jobs.GetByID("task-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	balance, err := f.balances.GetByUserID("user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, balance.VideoCredits)
}

func TestGenerateVideoProviderInsufficientCredits(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	f.grantVideoCredits(t, "user-1", 3)
	f.provider.generateErr = &kie.APIError{HTTPStatus: 200, Code: 402, Msg: "Insufficient credits for this operation"}

	_, err := f.svc.GenerateVideo(context.Background(), "user-1", "user-1@example.com", models.GenerateVideoRequest{
		Prompt: "sepia street scene",
	})
	assert.ErrorIs(t, err, ErrInsufficientVideoCredits)
}

func TestGenerateVideoDataURIImage(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	f.grantVideoCredits(t, "user-1", 1)

	raw := []byte{0xff, 0xd8, 0xff, 0xe0}
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)

	_, err := f.svc.GenerateVideo(context.Background(), "user-1", "user-1@example.com", models.GenerateVideoRequest{
		Prompt:   "colorize this photo",
		ImageURL: uri,
	})
	require.NoError(t, err)

	require.Len(t, f.store.uploads, 1)
	for key, data := range f.store.uploads {
		assert.Equal(t, raw, data)
		assert.Equal(t, "https://cdn.example.com/"+key, f.provider.lastGenerate.ImageURL)
	}
	assert.Empty(t, f.provider.lastGenerate.AspectRatio)
}

func TestGenerateVideoImageUploadFailureDegrades(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	f.grantVideoCredits(t, "user-1", 1)
	f.store.failUpload = true

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{0x89, 0x50})
	job, err := f.svc.GenerateVideo(context.Background(), "user-1", "user-1@example.com", models.GenerateVideoRequest{
		Prompt:   "colorize this photo",
		ImageURL: uri,
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSubmitted, job.Status)

	// Falls back to a text-only generation.
	assert.Empty(t, f.provider.lastGenerate.ImageURL)
	assert.Equal(t, "16:9", f.provider.lastGenerate.AspectRatio)
}

func TestReconcileSuccessRelocates(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	require.NoError(t, f.jobs.Create(&models.GenerationJob{
		GenerationID: "task-1",
		UserID:       "user-1",
		Status:       models.JobStatusProcessing,
		Progress:     50,
	}))
	f.provider.detail = &kie.RecordDetail{
		TaskID:    "task-1",
		State:     kie.StateSuccess,
		VideoInfo: &kie.VideoInfo{VideoURL: "https://provider.example.com/out.mp4"},
	}
	f.relocator.relocated = true
	f.relocator.url = "https://cdn.example.com/user-1/task-1.mp4"

	job, err := f.svc.CheckStatus(context.Background(), "user-1", "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, "https://cdn.example.com/user-1/task-1.mp4", job.VideoURL)
	assert.True(t, job.VideoRelocated)
	assert.Contains(t, f.relocator.lastKey, "user-1/task-1-")
	require.Len(t, f.publisher.published, 1)
}

func TestReconcileRelocationFailureFallsBack(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	require.NoError(t, f.jobs.Create(&models.GenerationJob{
		GenerationID: "task-1",
		UserID:       "user-1",
		Status:       models.JobStatusProcessing,
		Progress:     50,
	}))
	f.provider.detail = &kie.RecordDetail{
		TaskID:    "task-1",
		State:     kie.StateSuccess,
		VideoInfo: &kie.VideoInfo{VideoURL: "https://provider.example.com/out.mp4"},
	}

	job, err := f.svc.CheckStatus(context.Background(), "user-1", "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, "https://provider.example.com/out.mp4", job.VideoURL)
	assert.False(t, job.VideoRelocated)
}

func TestReconcileFailedState(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	require.NoError(t, f.jobs.Create(&models.GenerationJob{
		GenerationID: "task-1",
		UserID:       "user-1",
		Status:       models.JobStatusProcessing,
		Progress:     50,
	}))
	f.provider.detail = &kie.RecordDetail{
		TaskID:  "task-1",
		State:   kie.StateFailed,
		FailMsg: "content policy violation",
	}

	job, err := f.svc.CheckStatus(context.Background(), "user-1", "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Equal(t, "content policy violation", job.ErrorMessage)
}

func TestReconcileIntermediateState(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	require.NoError(t, f.jobs.Create(&models.GenerationJob{
		GenerationID: "task-1",
		UserID:       "user-1",
		Status:       models.JobStatusSubmitted,
	}))
	f.provider.detail = &kie.RecordDetail{TaskID: "task-1", State: kie.StateGenerating}

	job, err := f.svc.CheckStatus(context.Background(), "user-1", "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusProcessing, job.Status)
	assert.Equal(t, 50, job.Progress)
	require.Len(t, f.publisher.published, 1)

	// Unchanged provider state publishes nothing the second time around.
	_, err = f.svc.CheckStatus(context.Background(), "user-1", "task-1")
	require.NoError(t, err)
	assert.Len(t, f.publisher.published, 1)
}

func TestReconcileTerminalShortCircuit(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	require.NoError(t, f.jobs.Create(&models.GenerationJob{
		GenerationID:   "task-1",
		UserID:         "user-1",
		Status:         models.JobStatusCompleted,
		Progress:       100,
		VideoURL:       "https://cdn.example.com/user-1/task-1.mp4",
		VideoRelocated: true,
	}))

	job, err := f.svc.CheckStatus(context.Background(), "user-1", "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Zero(t, f.provider.detailCalls)
	assert.Zero(t, f.relocator.calls)
}

func TestReconcileEnvelopeFailureMarksJobFailed(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	require.NoError(t, f.jobs.Create(&models.GenerationJob{
		GenerationID: "task-1",
		UserID:       "user-1",
		Status:       models.JobStatusSubmitted,
	}))
	f.provider.detailErr = &kie.APIError{HTTPStatus: 200, Code: 422, Msg: "task rejected"}

	job, err := f.svc.CheckStatus(context.Background(), "user-1", "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Equal(t, "task rejected", job.ErrorMessage)
}

func TestCheckStatusUnknownJob(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	_, err := f.svc.CheckStatus(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestCheckStatusWrongOwner(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	require.NoError(t, f.jobs.Create(&models.GenerationJob{
		GenerationID: "task-1",
		UserID:       "user-1",
		Status:       models.JobStatusSubmitted,
	}))

	_, err := f.svc.CheckStatus(context.Background(), "user-2", "task-1")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestPollPendingJobsContinuesPastErrors(t *testing.T) {
	f := newVideoFixture(t, newTestDB(t))
	require.NoError(t, f.jobs.Create(&models.GenerationJob{
		GenerationID: "task-1",
		UserID:       "user-1",
		Status:       models.JobStatusSubmitted,
	}))
	require.NoError(t, f.jobs.Create(&models.GenerationJob{
		GenerationID: "task-2",
		UserID:       "user-1",
		Status:       models.JobStatusProcessing,
		Progress:     50,
	}))
	f.provider.detailErr = &kie.APIError{HTTPStatus: 503, Code: 503, Msg: "gateway unavailable"}

	processed, err := f.svc.PollPendingJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Equal(t, 2, f.provider.detailCalls)
}
