package storage

import (
	"context"
	"io"
)

// ObjectStorage is the durable store for re-hosted generation assets and
// user-supplied input images.
type ObjectStorage interface {
	// Upload writes the object under key. size may be -1 when unknown.
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// PublicURL returns the durable public URL for an uploaded key.
	PublicURL(key string) string
}
