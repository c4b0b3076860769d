package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/vintageai/vintageai-backend/internal/models"
	"github.com/vintageai/vintageai-backend/pkg/kie"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.CreditBalance{},
		&models.GenerationJob{},
		&models.Purchase{},
	))
	return db
}

// fakeVideoProvider scripts the KIE gateway.
type fakeVideoProvider struct {
	taskID       string
	generateErr  error
	lastGenerate kie.GenerateRequest

	detail      *kie.RecordDetail
	detailErr   error
	detailCalls int
}

func (f *fakeVideoProvider) Generate(_ context.Context, req kie.GenerateRequest) (string, error) {
	f.lastGenerate = req
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.taskID, nil
}

func (f *fakeVideoProvider) RecordDetail(_ context.Context, _ string) (*kie.RecordDetail, error) {
	f.detailCalls++
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.detail, nil
}

// fakeStore implements storage.ObjectStorage in memory.
type fakeStore struct {
	uploads    map[string][]byte
	failUpload bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: make(map[string][]byte)}
}

func (f *fakeStore) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if f.failUpload {
		return fmt.Errorf("storage quota exceeded")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

// fakeRelocator scripts relocation outcomes.
type fakeRelocator struct {
	url       string
	relocated bool
	calls     int
	lastKey   string
}

func (f *fakeRelocator) Relocate(_ context.Context, sourceURL, key string) (string, bool) {
	f.calls++
	f.lastKey = key
	if !f.relocated {
		return sourceURL, false
	}
	return f.url, true
}

// fakePublisher records job updates fanned out to the realtime channel.
type fakePublisher struct {
	published []*models.GenerationJob
}

func (f *fakePublisher) PublishJob(_ string, job *models.GenerationJob) {
	f.published = append(f.published, job)
}
