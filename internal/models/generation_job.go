package models

import "time"

const (
	JobStatusSubmitted  = "submitted"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// TerminalJobStatuses are never left once entered. Every job update is a
// conditional write excluding these, so concurrent reconcilers cannot
// race past a finished job.
var TerminalJobStatuses = []string{JobStatusCompleted, JobStatusFailed}

// GenerationJob tracks one asynchronous video generation from submission
// to a terminal state. GenerationID is the provider-assigned task id and
// the correlation key for every status check.
type GenerationJob struct {
	GenerationID string    `json:"generation_id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"index;not null"`
	Status       string    `json:"status" gorm:"not null;default:'submitted'"`
	Progress     int       `json:"progress" gorm:"not null;default:0"`
	VideoURL     string    `json:"video_url"`
	// VideoRelocated marks whether VideoURL points at our object store or
	// is a pass-through provider URL after a failed relocation.
	VideoRelocated bool      `json:"video_relocated" gorm:"not null;default:false"`
	ErrorMessage   string    `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (j *GenerationJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
