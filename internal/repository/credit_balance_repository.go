package repository

import (
	"errors"

	"github.com/vintageai/vintageai-backend/internal/models"
	"gorm.io/gorm"
)

// ErrInsufficientCredits is returned when a guarded decrement finds no
// credit left to spend.
var ErrInsufficientCredits = errors.New("insufficient credits")

type CreditBalanceRepository struct {
	db *gorm.DB
}

func NewCreditBalanceRepository(db *gorm.DB) *CreditBalanceRepository {
	return &CreditBalanceRepository{
		db: db,
	}
}

// GetOrCreate returns the user's ledger row, creating it with zero
// balances on first contact.
func (r *CreditBalanceRepository) GetOrCreate(userID, email string) (*models.CreditBalance, error) {
	var balance models.CreditBalance
	err := r.db.Where(models.CreditBalance{UserID: userID}).
		Attrs(models.CreditBalance{Email: email}).
		FirstOrCreate(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *CreditBalanceRepository) GetByUserID(userID string) (*models.CreditBalance, error) {
	var balance models.CreditBalance
	err := r.db.Where("user_id = ?", userID).First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *CreditBalanceRepository) GetByEmail(email string) (*models.CreditBalance, error) {
	var balance models.CreditBalance
	err := r.db.Where("email = ?", email).Order("created_at ASC").First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// AddCredits applies a purchase grant as a single server-side increment so
// concurrent grants cannot lose updates.
func (r *CreditBalanceRepository) AddCredits(userID string, videos, images int) error {
	result := r.db.Model(&models.CreditBalance{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"video_credits": gorm.Expr("video_credits + ?", videos),
			"image_credits": gorm.Expr("image_credits + ?", images),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SpendVideoCredit decrements one video credit. The WHERE guard keeps the
// balance from ever going negative under concurrent spends.
func (r *CreditBalanceRepository) SpendVideoCredit(userID string) error {
	return r.spend(userID, "video_credits")
}

// SpendImageCredit decrements one image credit.
func (r *CreditBalanceRepository) SpendImageCredit(userID string) error {
	return r.spend(userID, "image_credits")
}

func (r *CreditBalanceRepository) spend(userID, column string) error {
	result := r.db.Model(&models.CreditBalance{}).
		Where("user_id = ? AND "+column+" >= ?", userID, 1).
		Update(column, gorm.Expr(column+" - ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientCredits
	}
	return nil
}
