// Package storage defines the object storage interface used for user
// uploads such as avatars. Objects live in named buckets under
// slash-separated keys.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Bucket      string
	Key         string
	Size        int64
	ContentType string
	ModifiedAt  time.Time
}

// Client defines the interface for object storage operations.
type Client interface {
	// Upload writes content under bucket/key, overwriting any existing
	// object at the same key.
	Upload(ctx context.Context, bucket, key string, content io.Reader, contentType string) error

	// Download retrieves the contents of an object.
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, key string) error

	// Exists checks whether an object is present.
	Exists(ctx context.Context, bucket, key string) (bool, error)

	// GetMetadata retrieves object info without downloading content.
	GetMetadata(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// PublicURL returns the stable public URL for an object. The URL does
	// not change when the object is overwritten.
	PublicURL(bucket, key string) string
}
