package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/yigit/nhance/internal/pkg/apperrors"
)

// DefaultSignedURLTTL is the lifetime of a download URL
const DefaultSignedURLTTL = time.Hour

var (
	blobOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nhance_blob_operations_total",
		Help: "Blob store calls by operation and result.",
	}, []string{"operation", "bucket", "result"})

	signedURLCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nhance_signed_url_cache_total",
		Help: "Signed URL cache lookups by result.",
	}, []string{"result"})
)

// SignedURL is a time-limited download link
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Options tune a Transfer
type Options struct {
	SignedURLTTL time.Duration
	CacheSize    int
}

// Transfer is the blob API the content services use. It wraps a Backend with
// error translation, metrics and a signed URL cache.
type Transfer struct {
	backend Backend
	ttl     time.Duration
	cache   *expirable.LRU[string, *SignedURL]
	logger  zerolog.Logger
	now     func() time.Time
}

// NewTransfer wraps backend. Cached URLs live for half the signed URL TTL so a
// cached link always has at least half its lifetime left.
func NewTransfer(backend Backend, opts Options, logger zerolog.Logger) *Transfer {
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = DefaultSignedURLTTL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	return &Transfer{
		backend: backend,
		ttl:     opts.SignedURLTTL,
		cache:   expirable.NewLRU[string, *SignedURL](opts.CacheSize, nil, opts.SignedURLTTL/2),
		logger:  logger.With().Str("component", "blobstore").Logger(),
		now:     time.Now,
	}
}

// Backend returns the wrapped store
func (t *Transfer) Backend() Backend {
	return t.backend
}

func cacheKey(bucket, path string) string {
	return bucket + "/" + path
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// EnsureBuckets creates every bucket that does not exist yet
func (t *Transfer) EnsureBuckets(ctx context.Context, buckets ...string) error {
	for _, bucket := range buckets {
		if err := t.backend.EnsureBucket(ctx, bucket); err != nil {
			t.logger.Error().Err(err).Str("bucket", bucket).Msg("Failed to ensure bucket")
			return errors.Join(apperrors.ErrStorageUnavailable, err)
		}
	}
	return nil
}

// Upload stores r at bucket/path. Failures come back as an upload error.
func (t *Transfer) Upload(ctx context.Context, bucket, path string, r io.Reader, size int64, contentType string) error {
	err := t.backend.Put(ctx, bucket, path, r, size, contentType)
	blobOperationsTotal.WithLabelValues("upload", bucket, result(err)).Inc()
	if err != nil {
		t.logger.Error().Err(err).Str("bucket", bucket).Str("path", path).Msg("Blob upload failed")
		return apperrors.NewUploadError(err)
	}
	t.cache.Remove(cacheKey(bucket, path))
	t.logger.Debug().Str("bucket", bucket).Str("path", path).Int64("size", size).Msg("Blob uploaded")
	return nil
}

// Remove deletes the given paths. Errors are logged and counted, never
// returned; the caller decides whether a leftover blob matters.
func (t *Transfer) Remove(ctx context.Context, bucket string, paths ...string) {
	for _, p := range paths {
		t.cache.Remove(cacheKey(bucket, p))
		err := t.backend.Delete(ctx, bucket, p)
		blobOperationsTotal.WithLabelValues("remove", bucket, result(err)).Inc()
		if err != nil {
			t.logger.Warn().Err(err).Str("bucket", bucket).Str("path", p).Msg("Blob remove failed")
		}
	}
}

// Exists reports whether the blob is present
func (t *Transfer) Exists(ctx context.Context, bucket, path string) (bool, error) {
	ok, err := t.backend.Exists(ctx, bucket, path)
	blobOperationsTotal.WithLabelValues("exists", bucket, result(err)).Inc()
	if err != nil {
		t.logger.Error().Err(err).Str("bucket", bucket).Str("path", path).Msg("Blob stat failed")
		return false, errors.Join(apperrors.ErrStorageUnavailable, err)
	}
	return ok, nil
}

// SignedURL returns a download link, or nil when the blob does not exist
func (t *Transfer) SignedURL(ctx context.Context, bucket, path string) (*SignedURL, error) {
	key := cacheKey(bucket, path)
	if cached, ok := t.cache.Get(key); ok {
		signedURLCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	signedURLCacheTotal.WithLabelValues("miss").Inc()

	exists, err := t.Exists(ctx, bucket, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	issued := t.now()
	raw, err := t.backend.PresignGet(ctx, bucket, path, t.ttl)
	blobOperationsTotal.WithLabelValues("presign", bucket, result(err)).Inc()
	if err != nil {
		t.logger.Error().Err(err).Str("bucket", bucket).Str("path", path).Msg("Failed to sign URL")
		return nil, errors.Join(apperrors.ErrStorageUnavailable, fmt.Errorf("sign %s: %w", key, err))
	}

	signed := &SignedURL{URL: raw, ExpiresAt: issued.Add(t.ttl)}
	t.cache.Add(key, signed)
	return signed, nil
}
