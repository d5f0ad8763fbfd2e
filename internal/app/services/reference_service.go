package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/nhance/internal/app/auth"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/blobstore"
	"github.com/yigit/nhance/internal/pkg/validation"
)

// ReferenceService defines the interface for reference book operations
type ReferenceService interface {
	ListReferences(ctx context.Context, filter models.ContentFilter) ([]*dto.ReferenceResponse, error)
	GetReference(ctx context.Context, id uuid.UUID) (*dto.ReferenceResponse, error)
	DownloadReference(ctx context.Context, id uuid.UUID) (*dto.DownloadResponse, error)
	CreateReference(ctx context.Context, actorID int64, form *dto.ReferenceForm, file *FileUpload) (*dto.ReferenceResponse, error)
	UpdateReference(ctx context.Context, actorID int64, id uuid.UUID, form *dto.ReferenceUpdateForm, file *FileUpload) (*dto.ReferenceResponse, error)
	DeleteReference(ctx context.Context, actorID int64, id uuid.UUID) error
}

// referenceServiceImpl implements ReferenceService
type referenceServiceImpl struct {
	referenceRepo repositories.IReferenceRepository
	authzService  *auth.AuthorizationService
	uploads       *UploadValidator
	blobs         *contentBlobs
	logger        zerolog.Logger
	now           func() time.Time
}

// NewReferenceService creates a new ReferenceService
func NewReferenceService(
	referenceRepo repositories.IReferenceRepository,
	opsRepo repositories.IBlobOperationRepository,
	transfer BlobTransfer,
	authzService *auth.AuthorizationService,
	uploads *UploadValidator,
	bucket string,
	logger zerolog.Logger,
) ReferenceService {
	logger = logger.With().Str("service", "reference").Logger()
	return &referenceServiceImpl{
		referenceRepo: referenceRepo,
		authzService:  authzService,
		uploads:       uploads,
		blobs: &contentBlobs{
			blobs:  transfer,
			ops:    opsRepo,
			bucket: bucket,
			kind:   models.ContentReference,
			logger: logger,
		},
		logger: logger,
		now:    time.Now,
	}
}

// ListReferences returns the reference books of a subject, newest first
func (s *referenceServiceImpl) ListReferences(ctx context.Context, filter models.ContentFilter) ([]*dto.ReferenceResponse, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	filter.ModuleID = ""
	books, err := s.referenceRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing reference books: %w", err)
	}
	return dto.NewReferenceResponses(books), nil
}

// GetReference retrieves a reference book by ID
func (s *referenceServiceImpl) GetReference(ctx context.Context, id uuid.UUID) (*dto.ReferenceResponse, error) {
	book, err := s.referenceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewReferenceResponse(book), nil
}

// DownloadReference signs a download URL for the book's file
func (s *referenceServiceImpl) DownloadReference(ctx context.Context, id uuid.UUID) (*dto.DownloadResponse, error) {
	book, err := s.referenceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.blobs.download(ctx, book.ID, book.FilePath, book.FileName)
}

func (s *referenceServiceImpl) cleanTitleAuthor(title, author string) (string, string, error) {
	const blank = "Please fill in the title and author."
	t, err := requiredText("title", title, validation.TitleMaxLength, blank)
	if err != nil {
		return "", "", err
	}
	a, err := requiredText("author", author, validation.AuthorMaxLength, blank)
	if err != nil {
		return "", "", err
	}
	return t, a, nil
}

// CreateReference validates the form and file, uploads the blob and inserts the record
func (s *referenceServiceImpl) CreateReference(ctx context.Context, actorID int64, form *dto.ReferenceForm, file *FileUpload) (*dto.ReferenceResponse, error) {
	if err := s.authzService.ValidateAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if form == nil {
		return nil, apperrors.NewBadRequestError("missing reference fields")
	}

	title, author, err := s.cleanTitleAuthor(form.Title, form.Author)
	if err != nil {
		return nil, err
	}
	place, err := resolvePlacement(form.Branch, form.Semester, form.SubjectID, "", false)
	if err != nil {
		return nil, err
	}
	if err := s.uploads.Validate(models.ContentReference, file); err != nil {
		return nil, err
	}

	book := &models.ReferenceBook{
		ID:          uuid.New(),
		Title:       title,
		Author:      author,
		Branch:      place.branch,
		Semester:    place.semester,
		SubjectID:   place.subject.ID,
		SubjectName: place.subject.Name,
		FilePath:    blobstore.ReferencePath(place.branch.String(), place.semester, place.subject.ID, file.Name, s.now()),
		FileName:    file.Name,
		FileSize:    file.Size,
		UploadedBy:  actorID,
	}

	if err := s.blobs.upload(ctx, book.FilePath, file); err != nil {
		return nil, err
	}
	if err := s.referenceRepo.Create(ctx, book); err != nil {
		s.blobs.blobs.Remove(ctx, s.blobs.bucket, book.FilePath)
		return nil, err
	}

	s.logger.Info().Str("referenceID", book.ID.String()).Str("subjectID", book.SubjectID).Int64("actorID", actorID).Msg("Reference book created")
	return dto.NewReferenceResponse(book), nil
}

// UpdateReference applies the supplied fields and, when a file is given,
// replaces the blob: remove old, upload new, update record.
func (s *referenceServiceImpl) UpdateReference(ctx context.Context, actorID int64, id uuid.UUID, form *dto.ReferenceUpdateForm, file *FileUpload) (*dto.ReferenceResponse, error) {
	if err := s.authzService.ValidateAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	book, err := s.referenceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title, author := book.Title, book.Author
	if form != nil && form.Title != nil {
		title = *form.Title
	}
	if form != nil && form.Author != nil {
		author = *form.Author
	}
	if book.Title, book.Author, err = s.cleanTitleAuthor(title, author); err != nil {
		return nil, err
	}

	if file == nil {
		if err := s.referenceRepo.Update(ctx, book); err != nil {
			return nil, err
		}
		return dto.NewReferenceResponse(book), nil
	}

	if err := s.uploads.Validate(models.ContentReference, file); err != nil {
		return nil, err
	}
	next := models.FileRef{
		Path: blobstore.ReferencePath(book.Branch.String(), book.Semester, book.SubjectID, file.Name, s.now()),
		Name: file.Name,
		Size: file.Size,
	}

	op, err := s.blobs.begin(ctx, models.BlobOpReplace, book.ID, book.FilePath, &next)
	if err != nil {
		return nil, fmt.Errorf("error journaling reference replace: %w", err)
	}

	s.blobs.blobs.Remove(ctx, s.blobs.bucket, book.FilePath)
	if err := s.blobs.upload(ctx, next.Path, file); err != nil {
		s.blobs.settle(ctx, op, err)
		return nil, err
	}

	book.FilePath, book.FileName, book.FileSize = next.Path, next.Name, next.Size
	if err := s.referenceRepo.Update(ctx, book); err != nil {
		s.blobs.settle(ctx, op, err)
		return nil, err
	}
	s.blobs.settle(ctx, op, nil)

	s.logger.Info().Str("referenceID", book.ID.String()).Str("path", book.FilePath).Int64("actorID", actorID).Msg("Reference file replaced")
	return dto.NewReferenceResponse(book), nil
}

// DeleteReference removes the blob and then the record
func (s *referenceServiceImpl) DeleteReference(ctx context.Context, actorID int64, id uuid.UUID) error {
	if err := s.authzService.ValidateAdmin(ctx, actorID); err != nil {
		return err
	}

	book, err := s.referenceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	op, err := s.blobs.begin(ctx, models.BlobOpDelete, book.ID, book.FilePath, nil)
	if err != nil {
		return fmt.Errorf("error journaling reference delete: %w", err)
	}

	s.blobs.blobs.Remove(ctx, s.blobs.bucket, book.FilePath)
	err = s.referenceRepo.Delete(ctx, book.ID)
	if err != nil && !errors.Is(err, apperrors.ErrReferenceNotFound) {
		s.blobs.settle(ctx, op, err)
		return err
	}
	s.blobs.settle(ctx, op, nil)
	if err != nil {
		return err
	}

	s.logger.Info().Str("referenceID", book.ID.String()).Int64("actorID", actorID).Msg("Reference book deleted")
	return nil
}
