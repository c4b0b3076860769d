package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vintageai/vintageai-backend/internal/models"
)

func TestCreatePurchaseDuplicateSession(t *testing.T) {
	repo := NewPurchaseRepository(newTestDB(t))

	purchase := &models.Purchase{
		StripeSessionID: "cs_test_123",
		UserID:          "user-1",
		Email:           "user@example.com",
		PackageType:     "starter",
		Videos:          50,
		Images:          100,
		Paid:            true,
	}
	require.NoError(t, repo.Create(purchase))

	dup := &models.Purchase{
		StripeSessionID: "cs_test_123",
		UserID:          "user-1",
		PackageType:     "starter",
	}
	assert.ErrorIs(t, repo.Create(dup), ErrDuplicateSession)
}

func TestGetUserPurchaseHistory(t *testing.T) {
	repo := NewPurchaseRepository(newTestDB(t))

	require.NoError(t, repo.Create(&models.Purchase{StripeSessionID: "cs_1", UserID: "user-1", PackageType: "starter", Paid: true}))
	require.NoError(t, repo.Create(&models.Purchase{StripeSessionID: "cs_2", UserID: "user-1", PackageType: "classic", Paid: true}))
	require.NoError(t, repo.Create(&models.Purchase{StripeSessionID: "cs_3", UserID: "user-2", PackageType: "premier", Paid: true}))

	history, err := repo.GetUserPurchaseHistory("user-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
