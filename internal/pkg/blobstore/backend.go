// Package blobstore moves file bytes in and out of object storage and mints
// time-limited download URLs for them.
package blobstore

import (
	"context"
	"io"
	"time"
)

// Backend is an object store addressed by bucket and slash-separated path
type Backend interface {
	// EnsureBucket creates the bucket when it does not exist yet
	EnsureBucket(ctx context.Context, bucket string) error
	Put(ctx context.Context, bucket, path string, r io.Reader, size int64, contentType string) error
	// Delete succeeds when the object is already gone
	Delete(ctx context.Context, bucket, path string) error
	Exists(ctx context.Context, bucket, path string) (bool, error)
	PresignGet(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
}
