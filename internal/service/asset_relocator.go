package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vintageai/vintageai-backend/pkg/storage"
	"go.uber.org/zap"
)

// AssetRelocator copies provider-hosted binaries into our object store so
// output URLs survive the provider's retention window. Relocation is
// best-effort: on any failure the caller gets the original URL back and
// the job still completes.
type AssetRelocator struct {
	store      storage.ObjectStorage
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAssetRelocator(store storage.ObjectStorage, logger *zap.Logger) *AssetRelocator {
	return &AssetRelocator{
		store: store,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}
}

// Relocate streams sourceURL into the object store under key and returns
// the durable URL. The second return reports whether the copy succeeded;
// false means the returned URL is the original pass-through source.
func (r *AssetRelocator) Relocate(ctx context.Context, sourceURL, key string) (string, bool) {
	durableURL, err := r.relocate(ctx, sourceURL, key)
	if err != nil {
		r.logger.Warn("asset relocation failed, falling back to provider url",
			zap.String("source_url", sourceURL),
			zap.String("key", key),
			zap.Error(err),
		)
		return sourceURL, false
	}
	return durableURL, true
}

func (r *AssetRelocator) relocate(ctx context.Context, sourceURL, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("asset download returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if err := r.store.Upload(ctx, key, resp.Body, resp.ContentLength, contentType); err != nil {
		return "", err
	}
	return r.store.PublicURL(key), nil
}
