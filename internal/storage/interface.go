package storage

import (
	"context"
	"io"
	"time"
)

// BlobStore abstracts where return-condition photos live. The local backend
// serves demo and test setups; an S3-style backend satisfies the same
// interface in production.
type BlobStore interface {
	// GeneratePresignedUploadURL returns a URL the client PUTs the photo to.
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	// GeneratePresignedDownloadURL returns a URL the photo can be fetched from.
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists reports whether the blob exists and its size.
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	DeleteFile(ctx context.Context, key string) error

	// SaveFile, ReadFile and VerifyUploadToken back the local
	// upload/download HTTP handlers; cloud backends do not need them on the
	// request path because the cloud verifies its own presigned URLs.
	SaveFile(key string, reader io.Reader) error
	ReadFile(key string) (io.ReadCloser, error)
	VerifyUploadToken(token, key string) bool
}
