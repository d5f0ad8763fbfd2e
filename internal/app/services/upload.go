package services

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/validation"
)

// DefaultMaxUploadSize is the per-file cap when none is configured
const DefaultMaxUploadSize int64 = 50 << 20

const sniffLen = 3072

// Accepted document types
const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePPT  = "application/vnd.ms-powerpoint"
	MimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

var acceptedTypes = map[models.ContentKind][]string{
	models.ContentMaterial:  {MimePDF, MimeDOC, MimeDOCX, MimePPT, MimePPTX},
	models.ContentReference: {MimePDF, MimeDOC, MimeDOCX},
}

var acceptedTypesMessage = map[models.ContentKind]string{
	models.ContentMaterial:  "Please upload PDF, DOC, DOCX, PPT, or PPTX files only.",
	models.ContentReference: "Please upload PDF, DOC, or DOCX files only.",
}

// FileUpload is an incoming file, detached from the HTTP layer
type FileUpload struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// OpenFileHeader opens a multipart file. The caller closes the returned closer.
func OpenFileHeader(fh *multipart.FileHeader) (*FileUpload, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	return &FileUpload{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Reader:      f,
	}, f, nil
}

// UploadValidator enforces type and size rules on uploads
type UploadValidator struct {
	maxSize int64
}

// NewUploadValidator creates a validator with the given cap
func NewUploadValidator(maxSize int64) *UploadValidator {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &UploadValidator{maxSize: maxSize}
}

// MaxSize returns the per-file cap in bytes
func (v *UploadValidator) MaxSize() int64 {
	return v.maxSize
}

// Validate checks file for kind and settles its content type. When the client
// sent no usable type the leading bytes are sniffed; file.Reader is rewound so
// the full content is still available.
func (v *UploadValidator) Validate(kind models.ContentKind, file *FileUpload) error {
	if file == nil || file.Reader == nil {
		return apperrors.NewValidationError("file", "Please select a file to upload.")
	}
	if strings.TrimSpace(file.Name) == "" {
		return apperrors.NewValidationError("file", "Uploaded file has no name.")
	}
	if !validation.NewStringValidation(file.Name).WithMaxLength(validation.FileNameMaxLength).Validate() {
		return apperrors.NewValidationError("file", fmt.Sprintf("File name must be at most %d characters.", validation.FileNameMaxLength))
	}
	if file.Size <= 0 {
		return apperrors.NewValidationError("file", "Uploaded file is empty.")
	}
	if file.Size > v.maxSize {
		return apperrors.NewValidationError("file", fmt.Sprintf("File exceeds the %d MB limit.", v.maxSize>>20))
	}

	contentType := normalizeMediaType(file.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(file.Reader, head)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return apperrors.NewValidationError("file", "Uploaded file could not be read.")
		}
		head = head[:n]
		file.Reader = io.MultiReader(bytes.NewReader(head), file.Reader)

		detected := mimetype.Detect(head)
		contentType = detected.String()
		for _, accepted := range acceptedTypes[kind] {
			if detected.Is(accepted) {
				contentType = accepted
				break
			}
		}
		contentType = normalizeMediaType(contentType)
	}

	for _, accepted := range acceptedTypes[kind] {
		if contentType == accepted {
			file.ContentType = accepted
			return nil
		}
	}
	return apperrors.NewValidationError("file", acceptedTypesMessage[kind])
}

func normalizeMediaType(ct string) string {
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mediaType
}
