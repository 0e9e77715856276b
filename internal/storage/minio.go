package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"socialnet/internal/config"
	"socialnet/internal/middleware"
	"socialnet/internal/observability"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore is the BlobStore backed by MinIO or any S3-compatible service.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore creates the client. It does not touch the network; call
// EnsureBucket at startup.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := strings.TrimSuffix(cfg.MinioPublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.MinioEndpoint
	}

	return &MinioStore{client: client, bucket: cfg.MinioBucket, publicURL: publicURL}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", s.bucket, err)
	}
	middleware.Logger.InfoContext(ctx, "Created object storage bucket", slog.String("bucket", s.bucket))
	return nil
}

// Upload stores obj and returns its object key.
func (s *MinioStore) Upload(ctx context.Context, obj Object) (key string, err error) {
	ctx, span := observability.StartSpan(ctx, "storage", "upload")
	defer func() { observability.EndSpan(span, err) }()

	now := time.Now()
	key = ObjectKey(obj.Prefix, obj.Filename, now)

	meta := map[string]string{
		"original-filename": obj.Filename,
		"uploaded-at":       now.UTC().Format(time.RFC3339),
	}
	for k, v := range obj.Metadata {
		meta[k] = v
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType:  ContentType(obj.ContentType, obj.Filename),
		UserMetadata: meta,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	kind, _, _ := strings.Cut(obj.Prefix, "/")
	observability.UploadedBytes.WithLabelValues(kind).Add(float64(info.Size))
	return key, nil
}

// Delete removes the object. Missing objects are not an error.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{GovernanceBypass: true})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// URL returns the public URL of key, or "" for an empty key.
func (s *MinioStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.publicURL + "/" + s.bucket + "/" + key
}
