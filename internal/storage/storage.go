// Package storage defines the object storage operations used by the gateway.
// Two drivers are available: AWS S3 through the AWS SDK, and MinIO (or any
// S3-compatible provider) through minio-go. The driver is chosen at startup.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/geoiq/gateway/internal/config"
)

// ErrNotFound is returned by Get when the key does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// Object is a fully buffered object read back from the bucket.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
	Size        int64
}

// Storage is the interface for writing and reading objects in a single bucket.
type Storage interface {
	// Put uploads body under key, replacing any existing object with that key.
	// size may be -1 when unknown.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// Get reads the whole object into memory.
	Get(ctx context.Context, key string) (*Object, error)
	// Bucket returns the bucket name all keys live in.
	Bucket() string
}

// New builds the Storage selected by cfg.StorageDriver. No network calls are
// made except for the optional MinIO bucket bootstrap, whose failure is only logged.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (Storage, error) {
	switch cfg.StorageDriver {
	case "s3", "":
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
		})
	case "minio":
		store, err := NewMinioStorage(MinioConfig{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.StorageUseSSL,
		})
		if err != nil {
			return nil, err
		}
		if cfg.StorageCreateBucket {
			if err := store.EnsureBucket(ctx); err != nil {
				log.Warn("ensure bucket failed", zap.String("bucket", cfg.Bucket), zap.Error(err))
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
