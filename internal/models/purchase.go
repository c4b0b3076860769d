package models

import "time"

// Purchase is an append-only record of a checkout session applied to the
// ledger. The unique StripeSessionID is what makes payment verification
// exactly-once: the row is inserted before any credits are granted, and a
// duplicate insert means the grant already happened.
type Purchase struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	StripeSessionID string    `json:"stripe_session_id" gorm:"uniqueIndex;not null"`
	UserID          string    `json:"user_id" gorm:"index"`
	Email           string    `json:"email"`
	PackageType     string    `json:"package_type" gorm:"not null"`
	Videos          int       `json:"videos" gorm:"not null"`
	Images          int       `json:"images" gorm:"not null"`
	Amount          int64     `json:"amount"`
	Paid            bool      `json:"paid" gorm:"not null;default:false"`
	StripePaymentID string    `json:"stripe_payment_id"`
	CreatedAt       time.Time `json:"created_at"`
}
