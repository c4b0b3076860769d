package models

import "time"

// CreditBalance holds the per-user credit ledger row. One row per user,
// created lazily with zero balances. Balances never go negative; all
// mutations go through guarded atomic updates in the repository.
type CreditBalance struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"index"`
	VideoCredits int       `json:"video_credits" gorm:"not null;default:0"`
	ImageCredits int       `json:"image_credits" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
