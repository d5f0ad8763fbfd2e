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
	"github.com/yigit/nhance/internal/pkg/helpers"
	"github.com/yigit/nhance/internal/pkg/validation"
)

// MaterialService defines the interface for material operations
type MaterialService interface {
	ListMaterials(ctx context.Context, filter models.ContentFilter) ([]*dto.MaterialResponse, error)
	GetMaterial(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error)
	DownloadMaterial(ctx context.Context, id uuid.UUID) (*dto.DownloadResponse, error)
	CreateMaterial(ctx context.Context, actorID int64, form *dto.MaterialForm, file *FileUpload) (*dto.MaterialResponse, error)
	UpdateMaterial(ctx context.Context, actorID int64, id uuid.UUID, form *dto.MaterialUpdateForm, file *FileUpload) (*dto.MaterialResponse, error)
	DeleteMaterial(ctx context.Context, actorID int64, id uuid.UUID) error
}

// materialServiceImpl implements MaterialService
type materialServiceImpl struct {
	materialRepo repositories.IMaterialRepository
	authzService *auth.AuthorizationService
	uploads      *UploadValidator
	blobs        *contentBlobs
	logger       zerolog.Logger
	now          func() time.Time
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(
	materialRepo repositories.IMaterialRepository,
	opsRepo repositories.IBlobOperationRepository,
	transfer BlobTransfer,
	authzService *auth.AuthorizationService,
	uploads *UploadValidator,
	bucket string,
	logger zerolog.Logger,
) MaterialService {
	logger = logger.With().Str("service", "material").Logger()
	return &materialServiceImpl{
		materialRepo: materialRepo,
		authzService: authzService,
		uploads:      uploads,
		blobs: &contentBlobs{
			blobs:  transfer,
			ops:    opsRepo,
			bucket: bucket,
			kind:   models.ContentMaterial,
			logger: logger,
		},
		logger: logger,
		now:    time.Now,
	}
}

// ListMaterials returns the materials matching filter, newest first
func (s *materialServiceImpl) ListMaterials(ctx context.Context, filter models.ContentFilter) ([]*dto.MaterialResponse, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	items, err := s.materialRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing materials: %w", err)
	}
	return dto.NewMaterialResponses(items), nil
}

// GetMaterial retrieves a material by ID
func (s *materialServiceImpl) GetMaterial(ctx context.Context, id uuid.UUID) (*dto.MaterialResponse, error) {
	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewMaterialResponse(m), nil
}

// DownloadMaterial signs a download URL for the material's file
func (s *materialServiceImpl) DownloadMaterial(ctx context.Context, id uuid.UUID) (*dto.DownloadResponse, error) {
	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.blobs.download(ctx, m.ID, m.FilePath, m.FileName)
}

// CreateMaterial validates the form and file, uploads the blob and inserts the record
func (s *materialServiceImpl) CreateMaterial(ctx context.Context, actorID int64, form *dto.MaterialForm, file *FileUpload) (*dto.MaterialResponse, error) {
	if err := s.authzService.ValidateAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if form == nil {
		return nil, apperrors.NewBadRequestError("missing material fields")
	}

	title, err := requiredText("title", form.Title, validation.TitleMaxLength, "Please enter a title for the material.")
	if err != nil {
		return nil, err
	}
	place, err := resolvePlacement(form.Branch, form.Semester, form.SubjectID, form.ModuleID, true)
	if err != nil {
		return nil, err
	}
	if err := s.uploads.Validate(models.ContentMaterial, file); err != nil {
		return nil, err
	}

	m := &models.Material{
		ID:          uuid.New(),
		Title:       title,
		Description: helpers.TrimmedOrNil(form.Description),
		Branch:      place.branch,
		Semester:    place.semester,
		SubjectID:   place.subject.ID,
		SubjectName: place.subject.Name,
		ModuleID:    place.module.ID,
		ModuleName:  place.module.Name,
		FilePath:    blobstore.MaterialPath(place.branch.String(), place.semester, place.subject.ID, place.module.ID, file.Name, s.now()),
		FileName:    file.Name,
		FileSize:    file.Size,
		UploadedBy:  actorID,
	}

	if err := s.blobs.upload(ctx, m.FilePath, file); err != nil {
		return nil, err
	}
	if err := s.materialRepo.Create(ctx, m); err != nil {
		s.blobs.blobs.Remove(ctx, s.blobs.bucket, m.FilePath)
		return nil, err
	}

	s.logger.Info().
		Str("materialID", m.ID.String()).
		Str("subjectID", m.SubjectID).
		Str("moduleID", m.ModuleID).
		Int64("actorID", actorID).
		Msg("Material created")
	return dto.NewMaterialResponse(m), nil
}

// UpdateMaterial applies the supplied fields. With a file the old blob is
// removed, the new one uploaded, and the record updated, in that order.
func (s *materialServiceImpl) UpdateMaterial(ctx context.Context, actorID int64, id uuid.UUID, form *dto.MaterialUpdateForm, file *FileUpload) (*dto.MaterialResponse, error) {
	if err := s.authzService.ValidateAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if form != nil && form.Title != nil {
		title, err := requiredText("title", *form.Title, validation.TitleMaxLength, "Please enter a title for the material.")
		if err != nil {
			return nil, err
		}
		m.Title = title
	}
	if form != nil && form.Description != nil {
		m.Description = helpers.TrimmedOrNil(*form.Description)
	}

	if file == nil {
		if err := s.materialRepo.Update(ctx, m); err != nil {
			return nil, err
		}
		return dto.NewMaterialResponse(m), nil
	}

	if err := s.uploads.Validate(models.ContentMaterial, file); err != nil {
		return nil, err
	}
	next := models.FileRef{
		Path: blobstore.MaterialPath(m.Branch.String(), m.Semester, m.SubjectID, m.ModuleID, file.Name, s.now()),
		Name: file.Name,
		Size: file.Size,
	}

	op, err := s.blobs.begin(ctx, models.BlobOpReplace, m.ID, m.FilePath, &next)
	if err != nil {
		return nil, fmt.Errorf("error journaling material replace: %w", err)
	}

	s.blobs.blobs.Remove(ctx, s.blobs.bucket, m.FilePath)
	if err := s.blobs.upload(ctx, next.Path, file); err != nil {
		s.blobs.settle(ctx, op, err)
		return nil, err
	}

	m.FilePath, m.FileName, m.FileSize = next.Path, next.Name, next.Size
	if err := s.materialRepo.Update(ctx, m); err != nil {
		s.blobs.settle(ctx, op, err)
		return nil, err
	}
	s.blobs.settle(ctx, op, nil)

	s.logger.Info().Str("materialID", m.ID.String()).Str("path", m.FilePath).Int64("actorID", actorID).Msg("Material file replaced")
	return dto.NewMaterialResponse(m), nil
}

// DeleteMaterial removes the blob and then the record
func (s *materialServiceImpl) DeleteMaterial(ctx context.Context, actorID int64, id uuid.UUID) error {
	if err := s.authzService.ValidateAdmin(ctx, actorID); err != nil {
		return err
	}

	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	op, err := s.blobs.begin(ctx, models.BlobOpDelete, m.ID, m.FilePath, nil)
	if err != nil {
		return fmt.Errorf("error journaling material delete: %w", err)
	}

	s.blobs.blobs.Remove(ctx, s.blobs.bucket, m.FilePath)
	if err := s.materialRepo.Delete(ctx, m.ID); err != nil {
		if errors.Is(err, apperrors.ErrMaterialNotFound) {
			// deleted concurrently; nothing left to reconcile
			s.blobs.settle(ctx, op, nil)
			return err
		}
		s.blobs.settle(ctx, op, err)
		return err
	}
	s.blobs.settle(ctx, op, nil)

	s.logger.Info().Str("materialID", m.ID.String()).Int64("actorID", actorID).Msg("Material deleted")
	return nil
}
