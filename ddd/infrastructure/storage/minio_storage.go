// Package storage implements the (out-of-scope) object-store client
// contract the core consumes, gateway.StorageGateway, against the
// MinIO/S3-compatible client owned by internal/resource (§2.1, §6).
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"

	"clipforge/ddd/domain/gateway"
	"clipforge/internal/resource"
	"clipforge/pkg/logger"
)

// MinioStorage is the MinIO-backed gateway.StorageGateway implementation.
type MinioStorage struct {
	res *resource.MinioResource
}

// NewMinioStorage builds a StorageGateway over the shared MinIO resource.
func NewMinioStorage(res *resource.MinioResource) gateway.StorageGateway {
	return &MinioStorage{res: res}
}

// Upload puts localPath under key in bucket with multipart transfer
// (PutObject is given 10 MiB parts and 3 upload threads, per §6; minio-go
// switches to multipart above the part size). Storage keys are
// deterministic, so re-delivery simply overwrites (§4.3/§4.5 idempotency).
func (s *MinioStorage) Upload(ctx context.Context, bucket, key, localPath, contentType string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open local file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat local file: %w", err)
	}

	if contentType == "" {
		contentType = contentTypeFromExtension(key)
	}

	client := s.res.Client()
	_, err = client.PutObject(ctx, bucket, key, file, info.Size(), minio.PutObjectOptions{
		ContentType:  contentType,
		PartSize:     10 << 20,
		NumThreads:   3,
	})
	if err != nil {
		logger.Error("minio upload failed", map[string]interface{}{
			"bucket": bucket, "key": key, "error": err.Error(),
		})
		return "", fmt.Errorf("upload to minio: %w", err)
	}

	logger.Info("minio upload succeeded", map[string]interface{}{
		"bucket": bucket, "key": key, "size": info.Size(),
	})
	return key, nil
}

// Download pulls bucket/key to localPath, creating parent directories as
// needed.
func (s *MinioStorage) Download(ctx context.Context, bucket, key, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create local directory: %w", err)
	}

	client := s.res.Client()
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("get object from minio: %w", err)
	}
	defer obj.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create local file: %w", err)
	}
	defer out.Close()

	if _, err := out.ReadFrom(obj); err != nil {
		return fmt.Errorf("download from minio: %w", err)
	}
	return nil
}

// PublicURL returns a path-style "endpoint/bucket/key" address for a
// previously uploaded key, built from the configured endpoint as is (no
// scheme is added). This core never generates pre-signed/browser-facing
// links — that's the out-of-scope API's concern.
func (s *MinioStorage) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.res.Endpoint(), bucket, key)
}

func contentTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".ass", ".ssa":
		return "text/x-ssa"
	case ".srt":
		return "application/x-subrip"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
