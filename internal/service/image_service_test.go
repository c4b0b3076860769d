package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vintageai/vintageai-backend/internal/repository"
	"go.uber.org/zap"
)

type fakeImageGenerator struct {
	outputURL string
	err       error
	calls     int
}

func (f *fakeImageGenerator) GenerateImage(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.outputURL, nil
}

func TestGenerateImageSpendsOneCredit(t *testing.T) {
	db := newTestDB(t)
	balances := repository.NewCreditBalanceRepository(db)
	_, err := balances.GetOrCreate("user-1", "user-1@example.com")
	require.NoError(t, err)
	require.NoError(t, balances.AddCredits("user-1", 0, 2))

	gen := &fakeImageGenerator{outputURL: "https://gateway.example.com/img.png"}
	svc := NewImageService(balances, gen, zap.NewNop())

	url, err := svc.GenerateImage(context.Background(), "user-1", "user-1@example.com", "a vintage postcard", "")
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example.com/img.png", url)

	balance, err := balances.GetByUserID("user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, balance.ImageCredits)
}

func TestGenerateImageFailsClosedAtZero(t *testing.T) {
	db := newTestDB(t)
	balances := repository.NewCreditBalanceRepository(db)
	gen := &fakeImageGenerator{outputURL: "https://gateway.example.com/img.png"}
	svc := NewImageService(balances, gen, zap.NewNop())

	_, err := svc.GenerateImage(context.Background(), "user-1", "user-1@example.com", "a vintage postcard", "")
	assert.ErrorIs(t, err, ErrInsufficientImageCredits)
	assert.Zero(t, gen.calls)
}

func TestGenerateImageNoDecrementOnProviderFailure(t *testing.T) {
	db := newTestDB(t)
	balances := repository.NewCreditBalanceRepository(db)
	_, err := balances.GetOrCreate("user-1", "user-1@example.com")
	require.NoError(t, err)
	require.NoError(t, balances.AddCredits("user-1", 0, 5))

	gen := &fakeImageGenerator{err: fmt.Errorf("model overloaded")}
	svc := NewImageService(balances, gen, zap.NewNop())

	_, err = svc.GenerateImage(context.Background(), "user-1", "user-1@example.com", "a vintage postcard", "")
	require.Error(t, err)

	balance, err := balances.GetByUserID("user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, balance.ImageCredits)
}

func TestGenerateImageRequiresInput(t *testing.T) {
	svc := NewImageService(repository.NewCreditBalanceRepository(newTestDB(t)), &fakeImageGenerator{}, zap.NewNop())

	_, err := svc.GenerateImage(context.Background(), "user-1", "user-1@example.com", "  ", "")
	assert.ErrorIs(t, err, ErrImageInputRequired)
}
