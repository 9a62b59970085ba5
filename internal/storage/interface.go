package storage

import (
	"context"
	"io"
	"time"

	"github.com/timmy/bucketgate/internal/domain"
)

// ObjectStorage defines the bucket operations the gateway delegates to its backend
type ObjectStorage interface {
	// Upload stores an object with private access and returns its location
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)

	// List returns the first page of objects in the bucket, in backend order
	List(ctx context.Context) ([]domain.StoredObject, error)

	// PresignGet returns a time-limited retrieval URL without contacting the backend
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Delete deletes an object; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error

	// EnsureBucket creates the bucket if it doesn't exist
	EnsureBucket(ctx context.Context) error

	// Ping reports whether the bucket is reachable with the configured credentials
	Ping(ctx context.Context) error
}
