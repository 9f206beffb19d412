package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/hondurasarchive/backend/internal/config"
)

// New builds the ImageStore selected by cfg.Backend
func New(ctx context.Context, cfg config.StorageConfig) (*ImageStore, error) {
	var backend ObjectStorage
	var baseURL string

	switch cfg.Backend {
	case config.StorageLocal, "":
		backend = NewLocalStorage(cfg.Local.BasePath)
		baseURL = cfg.Local.BaseURL + MediaRoutePrefix
	case config.StorageMinIO:
		client, err := NewMinioClient(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		backend = client
		scheme := "http"
		if cfg.MinIO.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinIO.Endpoint, cfg.MinIO.Bucket)
	case config.StorageS3:
		client, err := NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		backend = client
		if cfg.S3.Endpoint != "" {
			baseURL = strings.TrimRight(cfg.S3.Endpoint, "/") + "/" + cfg.S3.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3.Bucket, cfg.S3.Region)
		}
	case config.StorageGCS:
		client, err := NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("failed to create gcs client: %w", err)
		}
		backend = client
		baseURL = "https://storage.googleapis.com/" + cfg.GCS.Bucket
	default:
		return nil, fmt.Errorf("unknown image storage backend %q", cfg.Backend)
	}

	if cfg.PublicBaseURL != "" {
		baseURL = cfg.PublicBaseURL
	}

	return NewImageStore(backend, baseURL), nil
}

// MediaRoutePrefix is the path stored images are served under by the API
const MediaRoutePrefix = "/media"
