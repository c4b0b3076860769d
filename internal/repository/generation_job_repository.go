package repository

import (
	"time"

	"github.com/vintageai/vintageai-backend/internal/models"
	"gorm.io/gorm"
)

type GenerationJobRepository struct {
	db *gorm.DB
}

func NewGenerationJobRepository(db *gorm.DB) *GenerationJobRepository {
	return &GenerationJobRepository{
		db: db,
	}
}

func (r *GenerationJobRepository) Create(job *models.GenerationJob) error {
	return r.db.Create(job).Error
}

func (r *GenerationJobRepository) GetByID(generationID string) (*models.GenerationJob, error) {
	var job models.GenerationJob
	err := r.db.Where("generation_id = ?", generationID).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListPending returns up to limit non-terminal jobs, oldest first so no
// job starves behind a flood of newer submissions.
func (r *GenerationJobRepository) ListPending(limit int) ([]models.GenerationJob, error) {
	var jobs []models.GenerationJob
	err := r.db.Where("status IN ?", []string{models.JobStatusSubmitted, models.JobStatusProcessing}).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// JobPatch is the outcome of reconciling one provider status report.
type JobPatch struct {
	Status         string
	Progress       int
	VideoURL       string
	VideoRelocated bool
	ErrorMessage   string
}

// ApplyTransition writes a patch with the terminal guard in the WHERE
// clause. Concurrent reconcilers (client poll, sweep, realtime trigger)
// all funnel through this; whoever loses the race affects zero rows and
// reports applied=false.
func (r *GenerationJobRepository) ApplyTransition(generationID string, patch JobPatch) (bool, error) {
	updates := map[string]interface{}{
		"status":     patch.Status,
		"progress":   patch.Progress,
		"updated_at": time.Now(),
	}
	if patch.VideoURL != "" {
		updates["video_url"] = patch.VideoURL
		updates["video_relocated"] = patch.VideoRelocated
	}
	if patch.ErrorMessage != "" {
		updates["error_message"] = patch.ErrorMessage
	}

	result := r.db.Model(&models.GenerationJob{}).
		Where("generation_id = ? AND status NOT IN ?", generationID, models.TerminalJobStatuses).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
