package blobstore

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/logger"
)

// FilesRoutePrefix is where the API serves locally stored blobs
const FilesRoutePrefix = "/files"

// LocalBackend stores blobs under basePath/{bucket}/{path} and signs download
// URLs with HMAC-SHA256 so they expire like presigned S3 URLs. Links are built
// on baseURL, so it must be the scheme and host clients reach the API on.
type LocalBackend struct {
	basePath string
	baseURL  string
	secret   []byte
	now      func() time.Time
}

// NewLocalBackend creates the base directory when missing
func NewLocalBackend(basePath, baseURL, secret string) (*LocalBackend, error) {
	if secret == "" {
		return nil, errors.New("local blob backend requires a signing secret")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalBackend{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		secret:   []byte(secret),
		now:      time.Now,
	}, nil
}

// resolve maps bucket and path to a file below basePath, rejecting traversal
func (b *LocalBackend) resolve(bucket, p string) (string, error) {
	if bucket == "" || bucket == "." || bucket == ".." || strings.ContainsAny(bucket, `/\`) {
		return "", apperrors.NewBadRequestError("invalid bucket name")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", apperrors.NewBadRequestError("invalid blob path")
		}
	}
	clean := path.Clean("/" + p)
	if clean == "/" {
		return "", apperrors.NewBadRequestError("invalid blob path")
	}
	return filepath.Join(b.basePath, bucket, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// EnsureBucket creates the bucket directory
func (b *LocalBackend) EnsureBucket(_ context.Context, bucket string) error {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) {
		return apperrors.NewBadRequestError("invalid bucket name")
	}
	return os.MkdirAll(filepath.Join(b.basePath, bucket), 0o755)
}

// Put writes to a temporary file and renames it into place
func (b *LocalBackend) Put(ctx context.Context, bucket, p string, r io.Reader, _ int64, _ string) error {
	dst, err := b.resolve(bucket, p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to save file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Delete removes the file; a missing file is not an error
func (b *LocalBackend) Delete(_ context.Context, bucket, p string) error {
	full, err := b.resolve(bucket, p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists reports whether a regular file is stored at bucket/path
func (b *LocalBackend) Exists(_ context.Context, bucket, p string) (bool, error) {
	full, err := b.resolve(bucket, p)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// PresignGet returns {baseURL}/files/{bucket}/{path}?expires=..&signature=..
func (b *LocalBackend) PresignGet(_ context.Context, bucket, p string, ttl time.Duration) (string, error) {
	if _, err := b.resolve(bucket, p); err != nil {
		return "", err
	}
	expires := strconv.FormatInt(b.now().Add(ttl).Unix(), 10)

	q := url.Values{}
	q.Set("expires", expires)
	q.Set("signature", b.sign(bucket, p, expires))
	return fmt.Sprintf("%s%s/%s/%s?%s", b.baseURL, FilesRoutePrefix, url.PathEscape(bucket), escapePath(p), q.Encode()), nil
}

// escapePath escapes each segment of an object path, keeping the slashes
func escapePath(p string) string {
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func (b *LocalBackend) sign(bucket, p, expires string) string {
	mac := hmac.New(sha256.New, b.secret)
	mac.Write([]byte(bucket + "/" + strings.TrimPrefix(p, "/") + "\n" + expires))
	return hex.EncodeToString(mac.Sum(nil))
}

// Open checks a signed request and opens the blob it points to. The caller
// closes the file.
func (b *LocalBackend) Open(bucket, p, expires, signature string) (*os.File, error) {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || b.now().Unix() > exp {
		return nil, apperrors.ErrSignatureInvalid
	}
	want := b.sign(bucket, p, expires)
	if !hmac.Equal([]byte(want), []byte(signature)) {
		return nil, apperrors.ErrSignatureInvalid
	}

	full, err := b.resolve(bucket, p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.ErrBlobNotFound
	}
	return f, err
}
