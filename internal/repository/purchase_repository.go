package repository

import (
	"errors"

	"github.com/vintageai/vintageai-backend/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateSession means a purchase row already exists for the checkout
// session, i.e. the grant was applied before.
var ErrDuplicateSession = errors.New("purchase already recorded for this session")

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{
		db: db,
	}
}

// Create inserts the append-only purchase record. The unique index on
// stripe_session_id turns a replayed verification into ErrDuplicateSession.
func (r *PurchaseRepository) Create(purchase *models.Purchase) error {
	err := r.db.Create(purchase).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSession
	}
	return err
}

func (r *PurchaseRepository) GetBySessionID(sessionID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.Where("stripe_session_id = ?", sessionID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) GetUserPurchaseHistory(userID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}
