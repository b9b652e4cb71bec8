package storage

import (
	"context"
	"io"
	"time"
)

// FileStore holds assignment reference files and submission files. The
// analysis worker is outside our network, so files are handed to it as
// presigned URLs rather than object keys.
type FileStore interface {
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Timeout   time.Duration
}
