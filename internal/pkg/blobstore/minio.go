package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds S3 connection settings
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// MinioBackend stores blobs in MinIO or any S3-compatible service
type MinioBackend struct {
	client *minio.Client
	region string
}

// NewMinioBackend creates the client. No request is made until first use.
func NewMinioBackend(cfg MinioConfig) (*MinioBackend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioBackend{client: client, region: cfg.Region}, nil
}

// EnsureBucket creates the bucket when missing
func (b *MinioBackend) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := b.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := b.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: b.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return nil
}

// Put uploads the object. size may be -1 when unknown.
func (b *MinioBackend) Put(ctx context.Context, bucket, path string, r io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, bucket, path, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (b *MinioBackend) Delete(ctx context.Context, bucket, path string) error {
	return b.client.RemoveObject(ctx, bucket, path, minio.RemoveObjectOptions{})
}

// Exists stats the object
func (b *MinioBackend) Exists(ctx context.Context, bucket, path string) (bool, error) {
	_, err := b.client.StatObject(ctx, bucket, path, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

// PresignGet returns an S3 presigned GET URL
func (b *MinioBackend) PresignGet(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	u, err := b.client.PresignedGetObject(ctx, bucket, path, ttl, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
