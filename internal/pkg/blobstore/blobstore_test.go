package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/nhance/internal/pkg/apperrors"
)

func newLocal(t *testing.T) *LocalBackend {
	t.Helper()
	b, err := NewLocalBackend(t.TempDir(), "http://localhost:8080/", "secret")
	require.NoError(t, err)
	return b
}

func TestPaths(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	assert.Equal(t, "pdf", Extension("notes.final.pdf"))
	assert.Equal(t, "README", Extension("README"))
	assert.Equal(t, "bin", Extension("trailing."))
	assert.Equal(t, "bin", Extension("notes.p#f"))
	assert.Equal(t, "bin", Extension("notes.p f"))
	assert.Equal(t, "bin", Extension("notes.p%3f"))
	assert.Equal(t, "bin", Extension("my notes"))
	assert.Equal(t, "DOCX", Extension("Thesis.DOCX"))

	assert.Equal(t, "CSE/2/cse-2-3/module-1/1700000000123.pdf",
		MaterialPath("CSE", 2, "cse-2-3", "module-1", "notes.pdf", at))
	assert.Equal(t, "ECE/5/ece-5-2/1700000000123.docx",
		ReferencePath("ECE", 5, "ece-5-2", "book.docx", at))
	assert.Equal(t, "CSE/2/cse-2-3/module-1/1700000000123.bin",
		MaterialPath("CSE", 2, "cse-2-3", "module-1", "notes.p#f", at))
}

func TestLocalBackend_PresignEscapesPath(t *testing.T) {
	ctx := context.Background()
	b := newLocal(t)
	require.NoError(t, b.EnsureBucket(ctx, "materials"))

	for _, p := range []string{"CSE/2/x/1.p#f", "CSE/2/x/1.p?f", "CSE/2/x/50%.pdf", "CSE/2/x/my notes.pdf"} {
		require.NoError(t, b.Put(ctx, "materials", p, strings.NewReader("body"), 4, "application/pdf"))

		raw, err := b.PresignGet(ctx, "materials", p, time.Hour)
		require.NoError(t, err)
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "/files/materials/"+p, u.Path, p)
		assert.NotEmpty(t, u.Query().Get("expires"), p)

		f, err := b.Open("materials", strings.TrimPrefix(u.Path, "/files/materials/"), u.Query().Get("expires"), u.Query().Get("signature"))
		require.NoError(t, err, p)
		f.Close()
	}
}

func TestLocalBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newLocal(t)
	require.NoError(t, b.EnsureBucket(ctx, "materials"))

	require.NoError(t, b.Put(ctx, "materials", "CSE/1/x/1.pdf", strings.NewReader("hello"), 5, "application/pdf"))
	ok, err := b.Exists(ctx, "materials", "CSE/1/x/1.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	raw, err := b.PresignGet(ctx, "materials", "CSE/1/x/1.pdf", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/files/materials/CSE/1/x/1.pdf", u.Path)

	f, err := b.Open("materials", "CSE/1/x/1.pdf", u.Query().Get("expires"), u.Query().Get("signature"))
	require.NoError(t, err)
	body, _ := io.ReadAll(f)
	f.Close()
	assert.Equal(t, "hello", string(body))

	_, err = b.Open("materials", "CSE/1/x/1.pdf", u.Query().Get("expires"), "bad")
	assert.ErrorIs(t, err, apperrors.ErrSignatureInvalid)

	require.NoError(t, b.Delete(ctx, "materials", "CSE/1/x/1.pdf"))
	require.NoError(t, b.Delete(ctx, "materials", "CSE/1/x/1.pdf"))
	ok, err = b.Exists(ctx, "materials", "CSE/1/x/1.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalBackend_ExpiredSignature(t *testing.T) {
	b := newLocal(t)
	b.now = func() time.Time { return time.Unix(1000, 0) }
	raw, err := b.PresignGet(context.Background(), "references", "a/1.pdf", time.Minute)
	require.NoError(t, err)
	u, _ := url.Parse(raw)

	b.now = func() time.Time { return time.Unix(2000, 0) }
	_, err = b.Open("references", "a/1.pdf", u.Query().Get("expires"), u.Query().Get("signature"))
	assert.ErrorIs(t, err, apperrors.ErrSignatureInvalid)
}

func TestLocalBackend_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	b := newLocal(t)

	err := b.Put(ctx, "materials", "../../etc/passwd", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = b.Exists(ctx, "../x", "a.pdf")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

// countingBackend wraps LocalBackend and counts presign calls
type countingBackend struct {
	*LocalBackend
	presigns int
	failPut  bool
}

func (c *countingBackend) PresignGet(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	c.presigns++
	return c.LocalBackend.PresignGet(ctx, bucket, path, ttl)
}

func (c *countingBackend) Put(ctx context.Context, bucket, path string, r io.Reader, size int64, ct string) error {
	if c.failPut {
		return errors.New("disk full")
	}
	return c.LocalBackend.Put(ctx, bucket, path, r, size, ct)
}

func TestTransfer_SignedURL(t *testing.T) {
	ctx := context.Background()
	backend := &countingBackend{LocalBackend: newLocal(t)}
	tr := NewTransfer(backend, Options{SignedURLTTL: time.Hour}, zerolog.Nop())

	missing, err := tr.SignedURL(ctx, "materials", "none.pdf")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, tr.Upload(ctx, "materials", "a/1.pdf", bytes.NewReader([]byte("x")), 1, "application/pdf"))

	first, err := tr.SignedURL(ctx, "materials", "a/1.pdf")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.WithinDuration(t, time.Now().Add(time.Hour), first.ExpiresAt, time.Minute)

	second, err := tr.SignedURL(ctx, "materials", "a/1.pdf")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, backend.presigns)

	tr.Remove(ctx, "materials", "a/1.pdf")
	gone, err := tr.SignedURL(ctx, "materials", "a/1.pdf")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestTransfer_UploadError(t *testing.T) {
	backend := &countingBackend{LocalBackend: newLocal(t), failPut: true}
	tr := NewTransfer(backend, Options{}, zerolog.Nop())

	err := tr.Upload(context.Background(), "materials", "a/1.pdf", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, apperrors.ErrUploadFailed)
}

func TestTransfer_RemoveNeverFails(t *testing.T) {
	tr := NewTransfer(newLocal(t), Options{}, zerolog.Nop())
	// invalid path makes the backend error; Remove only logs it
	tr.Remove(context.Background(), "materials", "../bad", "missing.pdf")
}
