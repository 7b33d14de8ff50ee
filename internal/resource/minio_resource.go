package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"clipforge/pkg/config"
	"clipforge/pkg/logger"
)

var (
	minioResourceOnce      sync.Once
	singletonMinioResource *MinioResource
)

// MinioResource manages the shared MinIO client and the pipeline's three
// object-storage buckets (§2.1): raw videos, thumbnails, processed shorts.
type MinioResource struct {
	client           *minio.Client
	endpoint         string
	rawVideosBucket  string
	thumbnailsBucket string
	processedBucket  string
}

// DefaultMinioResource returns the global MinIO resource instance.
func DefaultMinioResource() *MinioResource {
	minioResourceOnce.Do(func() {
		singletonMinioResource = &MinioResource{}
	})
	return singletonMinioResource
}

// MustOpen initializes the MinIO client and ensures all three buckets exist.
func (r *MinioResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MinioResource")
	}

	minioCfg := cfg.Minio
	if minioCfg.Endpoint == "" {
		panic("minio endpoint is required")
	}

	client, err := minio.New(minioCfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(minioCfg.AccessKeyID, minioCfg.SecretAccessKey, ""),
		Secure: minioCfg.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create minio client: %v", err))
	}

	r.client = client
	r.endpoint = minioCfg.Endpoint
	r.rawVideosBucket = minioCfg.RawVideosBucket
	r.thumbnailsBucket = minioCfg.ThumbnailsBucket
	r.processedBucket = minioCfg.ProcessedBucket

	for _, bucket := range []string{r.rawVideosBucket, r.thumbnailsBucket, r.processedBucket} {
		r.ensureBucket(bucket)
	}

	logger.Info("MinIO resource initialized", map[string]interface{}{
		"endpoint": minioCfg.Endpoint,
		"buckets":  []string{r.rawVideosBucket, r.thumbnailsBucket, r.processedBucket},
	})
}

func (r *MinioResource) ensureBucket(bucket string) {
	ctx := context.Background()
	exists, err := r.client.BucketExists(ctx, bucket)
	if err != nil {
		panic(fmt.Sprintf("failed to check minio bucket %s: %v", bucket, err))
	}
	if exists {
		return
	}
	if err := r.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		panic(fmt.Sprintf("failed to create minio bucket %s: %v", bucket, err))
	}
}

// Client exposes the MinIO client.
func (r *MinioResource) Client() *minio.Client { return r.client }

// Endpoint returns the configured MinIO endpoint address.
func (r *MinioResource) Endpoint() string { return r.endpoint }

// RawVideosBucket returns the bucket DW uploads source videos to.
func (r *MinioResource) RawVideosBucket() string { return r.rawVideosBucket }

// ThumbnailsBucket returns the bucket thumbnails are stored in.
func (r *MinioResource) ThumbnailsBucket() string { return r.thumbnailsBucket }

// ProcessedBucket returns the bucket EW uploads finished clips to.
func (r *MinioResource) ProcessedBucket() string { return r.processedBucket }

// Close is a no-op: the minio-go client holds no connection to release.
func (r *MinioResource) Close() {}
