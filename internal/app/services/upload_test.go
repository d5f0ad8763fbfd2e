package services

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/pkg/apperrors"
)

func TestUploadValidator_SniffsMissingType(t *testing.T) {
	v := NewUploadValidator(0)
	assert.Equal(t, DefaultMaxUploadSize, v.MaxSize())

	content := []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n")
	file := &FileUpload{Name: "notes", Size: int64(len(content)), ContentType: "application/octet-stream", Reader: bytes.NewReader(content)}

	require.NoError(t, v.Validate(models.ContentMaterial, file))
	assert.Equal(t, MimePDF, file.ContentType)

	body, err := io.ReadAll(file.Reader)
	require.NoError(t, err)
	assert.Equal(t, content, body)
}

func TestUploadValidator_Rules(t *testing.T) {
	v := NewUploadValidator(1 << 20)

	ppt := &FileUpload{Name: "deck.ppt", Size: 10, ContentType: MimePPT, Reader: bytes.NewReader(make([]byte, 10))}
	assert.NoError(t, v.Validate(models.ContentMaterial, ppt))

	ppt.ContentType = MimePPT
	err := v.Validate(models.ContentReference, ppt)
	assert.EqualError(t, err, "Please upload PDF, DOC, or DOCX files only.")

	withParams := &FileUpload{Name: "a.pdf", Size: 10, ContentType: "application/pdf; charset=binary", Reader: bytes.NewReader(make([]byte, 10))}
	require.NoError(t, v.Validate(models.ContentReference, withParams))
	assert.Equal(t, MimePDF, withParams.ContentType)

	err = v.Validate(models.ContentMaterial, nil)
	assert.EqualError(t, err, "Please select a file to upload.")

	big := &FileUpload{Name: "big.pdf", Size: 2 << 20, ContentType: MimePDF, Reader: bytes.NewReader(nil)}
	err = v.Validate(models.ContentMaterial, big)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Equal(t, "file", apperrors.Field(err))

	empty := &FileUpload{Name: "empty.pdf", Size: 0, ContentType: MimePDF, Reader: bytes.NewReader(nil)}
	assert.Error(t, v.Validate(models.ContentMaterial, empty))

	text := []byte("just some plain text")
	sniffed := &FileUpload{Name: "x.pdf", Size: int64(len(text)), Reader: bytes.NewReader(text)}
	err = v.Validate(models.ContentMaterial, sniffed)
	assert.EqualError(t, err, "Please upload PDF, DOC, DOCX, PPT, or PPTX files only.")
}

func TestUploadValidator_FileNameLength(t *testing.T) {
	v := NewUploadValidator(1 << 20)
	named := func(name string) *FileUpload {
		return &FileUpload{Name: name, Size: 10, ContentType: MimePDF, Reader: bytes.NewReader(make([]byte, 10))}
	}

	// counted in characters, the way the file_name column is
	assert.NoError(t, v.Validate(models.ContentMaterial, named(strings.Repeat("é", 251)+".pdf")))

	err := v.Validate(models.ContentMaterial, named(strings.Repeat("é", 252)+".pdf"))
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Equal(t, "file", apperrors.Field(err))
	assert.EqualError(t, err, "File name must be at most 255 characters.")
}
