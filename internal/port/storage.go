package port

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a stored file.
type FileInfo struct {
	SizeBytes   int64
	ContentType string
}

// Storage defines object store operations against the configured bucket.
type Storage interface {
	InitBucket() error
	GeneratePresignedUploadURL(ctx context.Context, fileKey string, expiry time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, fileKey string, expiry time.Duration) (string, error)
	FileExists(ctx context.Context, fileKey string) (bool, error)
	StatFile(ctx context.Context, fileKey string) (FileInfo, error)
	GetFile(ctx context.Context, fileKey string) (io.ReadSeekCloser, error)
	SaveFile(ctx context.Context, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error
	RemoveFile(ctx context.Context, fileKey string) error

	// ComposeParts assembles the final object from its part objects by
	// streaming them in order. Part objects are left in place; the caller
	// decides when to remove them.
	ComposeParts(ctx context.Context, destKey string, partKeys []string, contentType string) error
}
