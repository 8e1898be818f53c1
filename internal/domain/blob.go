package domain

import (
	"context"
	"io"
	"time"
)

// BlobWriter uploads objects to cold storage. Used to archive leaderboard
// snapshots after successful refreshes.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// BlobInfo describes one stored object.
type BlobInfo struct {
	Path         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// BlobReader retrieves and enumerates archived objects.
type BlobReader interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
}

// BlobDeleter removes archived objects. Used by archive retention.
type BlobDeleter interface {
	Delete(ctx context.Context, path string) error
}
