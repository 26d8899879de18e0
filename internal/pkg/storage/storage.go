package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sitecrew/workforce-backend-go/internal/config"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidPath  = errors.New("invalid file path")
)

// FileStorage keeps generated exports (summary registers, invoices).
type FileStorage interface {
	// Save writes r under key and returns the normalized key
	Save(ctx context.Context, key string, r io.Reader) (string, error)

	// Open returns a reader for key or ErrFileNotFound
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	Exists(ctx context.Context, key string) (bool, error)

	// URL is the public link for key
	URL(key string) string
}

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (FileStorage, error) {
	switch cfg.Driver {
	case "", "local":
		local, err := NewLocalStorage(cfg.BasePath, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return local, nil
	case "s3":
		bucket, err := NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return bucket, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
