package services

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/blobstore"
	"github.com/yigit/nhance/internal/pkg/validation"
)

// BlobTransfer is the part of blobstore.Transfer the content services use
type BlobTransfer interface {
	Upload(ctx context.Context, bucket, path string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, bucket string, paths ...string)
	Exists(ctx context.Context, bucket, path string) (bool, error)
	SignedURL(ctx context.Context, bucket, path string) (*blobstore.SignedURL, error)
}

// placement is a validated position in the catalog
type placement struct {
	branch   catalog.Branch
	semester int
	subject  catalog.Subject
	module   catalog.Module
}

func resolvePlacement(branch string, semester int, subjectID, moduleID string, withModule bool) (placement, error) {
	var p placement

	b, ok := catalog.ParseBranch(branch)
	if !ok {
		return p, apperrors.NewValidationError("branch", "Please select a valid branch.")
	}
	if !catalog.IsValidSemester(semester) {
		return p, apperrors.NewValidationError("semester", "Semester must be between 1 and 8.")
	}
	subject, ok := catalog.FindSubject(b, semester, strings.TrimSpace(subjectID))
	if !ok {
		return p, apperrors.NewValidationError("subjectId", "Please select a subject from the curriculum.")
	}
	p.branch, p.semester, p.subject = b, semester, subject

	if withModule {
		module, ok := catalog.FindModule(strings.TrimSpace(moduleID))
		if !ok {
			return p, apperrors.NewValidationError("moduleId", "Please select a module.")
		}
		p.module = module
	}
	return p, nil
}

// requiredText trims value and checks it is present and not too long
func requiredText(field, value string, maxLen int, blankMessage string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperrors.NewValidationError(field, blankMessage)
	}
	if !validation.NewStringValidation(trimmed).WithMaxLength(maxLen).Validate() {
		return "", apperrors.NewValidationError(field, field+" is too long")
	}
	return trimmed, nil
}

// validateFilter checks the branch and semester of a listing filter
func validateFilter(filter models.ContentFilter) error {
	if !filter.Branch.IsValid() {
		return apperrors.NewValidationError("branch", "Please select a valid branch.")
	}
	if !catalog.IsValidSemester(filter.Semester) {
		return apperrors.NewValidationError("semester", "Semester must be between 1 and 8.")
	}
	return nil
}

// contentBlobs runs the journaled blob steps shared by materials and references
type contentBlobs struct {
	blobs  BlobTransfer
	ops    repositories.IBlobOperationRepository
	bucket string
	kind   models.ContentKind
	logger zerolog.Logger
}

// begin records the intent of a replace or delete before any blob changes
func (c *contentBlobs) begin(ctx context.Context, kind models.BlobOpKind, recordID uuid.UUID, oldPath string, next *models.FileRef) (*models.BlobOperation, error) {
	op := &models.BlobOperation{
		Kind:     kind,
		Resource: c.kind,
		RecordID: recordID,
		Bucket:   c.bucket,
		OldPath:  oldPath,
	}
	if next != nil {
		op.NewPath = &next.Path
		op.NewFileName = &next.Name
		op.NewFileSize = &next.Size
	}
	if err := c.ops.Create(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

// settle marks a journal entry done, or failed with cause. A failure here is
// only logged; the reconciler re-examines entries left pending.
func (c *contentBlobs) settle(ctx context.Context, op *models.BlobOperation, cause error) {
	status, msg := models.BlobOpDone, ""
	if cause != nil {
		status, msg = models.BlobOpFailed, cause.Error()
		c.logger.Warn().Err(cause).
			Int64("opID", op.ID).
			Str("kind", string(op.Kind)).
			Str("recordID", op.RecordID.String()).
			Str("oldPath", op.OldPath).
			Msg("Blob operation left incomplete, queued for reconciliation")
	}
	if err := c.ops.UpdateStatus(ctx, op.ID, status, msg, false); err != nil {
		c.logger.Error().Err(err).Int64("opID", op.ID).Msg("Failed to update blob operation status")
	}
}

// upload stores file at path
func (c *contentBlobs) upload(ctx context.Context, path string, file *FileUpload) error {
	return c.blobs.Upload(ctx, c.bucket, path, file.Reader, file.Size, file.ContentType)
}

// download signs a URL for a record's blob. A missing blob is logged as an
// inconsistency and reported as not found.
func (c *contentBlobs) download(ctx context.Context, recordID uuid.UUID, path, fileName string) (*dto.DownloadResponse, error) {
	signed, err := c.blobs.SignedURL(ctx, c.bucket, path)
	if err != nil {
		return nil, err
	}
	if signed == nil {
		c.logger.Warn().
			Str("recordID", recordID.String()).
			Str("bucket", c.bucket).
			Str("path", path).
			Msg("Record points at a missing blob")
		return nil, apperrors.ErrBlobNotFound
	}
	return &dto.DownloadResponse{URL: signed.URL, FileName: fileName, ExpiresAt: signed.ExpiresAt}, nil
}
