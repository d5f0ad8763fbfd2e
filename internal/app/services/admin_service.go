package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/nhance/internal/app/auth"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/helpers"
)

// AdminService backs the admin panel
type AdminService interface {
	ListContent(ctx context.Context, actorID int64, kind models.ContentKind, page, size int) (*dto.PaginatedResponse, error)
	ListBlobOperations(ctx context.Context, actorID int64, status models.BlobOpStatus, page, size int) (*dto.PaginatedResponse, error)
	Reconcile(ctx context.Context, actorID int64) (*ReconcileReport, error)
}

type adminServiceImpl struct {
	materialRepo  repositories.IMaterialRepository
	referenceRepo repositories.IReferenceRepository
	opsRepo       repositories.IBlobOperationRepository
	reconciler    *Reconciler
	authzService  *auth.AuthorizationService
}

// NewAdminService creates a new AdminService
func NewAdminService(
	materialRepo repositories.IMaterialRepository,
	referenceRepo repositories.IReferenceRepository,
	opsRepo repositories.IBlobOperationRepository,
	reconciler *Reconciler,
	authzService *auth.AuthorizationService,
) AdminService {
	return &adminServiceImpl{
		materialRepo:  materialRepo,
		referenceRepo: referenceRepo,
		opsRepo:       opsRepo,
		reconciler:    reconciler,
		authzService:  authzService,
	}
}

// ListContent pages through every upload of one kind, newest first
func (s *adminServiceImpl) ListContent(ctx context.Context, actorID int64, kind models.ContentKind, page, size int) (*dto.PaginatedResponse, error) {
	if err := s.authzService.ValidateAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = models.ContentMaterial
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	var (
		items []dto.ContentOverviewItem
		total int64
	)

	switch kind {
	case models.ContentMaterial:
		materials, count, err := s.materialRepo.ListPage(ctx, offset, limit)
		if err != nil {
			return nil, fmt.Errorf("error listing materials: %w", err)
		}
		total = count
		items = make([]dto.ContentOverviewItem, 0, len(materials))
		for _, m := range materials {
			items = append(items, dto.ContentOverviewItem{
				Kind:        models.ContentMaterial,
				ID:          m.ID,
				Title:       m.Title,
				Branch:      m.Branch,
				Semester:    m.Semester,
				SubjectID:   m.SubjectID,
				SubjectName: m.SubjectName,
				ModuleID:    m.ModuleID,
				FileName:    m.FileName,
				FileSize:    m.FileSize,
				CreatedAt:   m.CreatedAt,
			})
		}
	case models.ContentReference:
		books, count, err := s.referenceRepo.ListPage(ctx, offset, limit)
		if err != nil {
			return nil, fmt.Errorf("error listing reference books: %w", err)
		}
		total = count
		items = make([]dto.ContentOverviewItem, 0, len(books))
		for _, b := range books {
			items = append(items, dto.ContentOverviewItem{
				Kind:        models.ContentReference,
				ID:          b.ID,
				Title:       b.Title,
				Branch:      b.Branch,
				Semester:    b.Semester,
				SubjectID:   b.SubjectID,
				SubjectName: b.SubjectName,
				FileName:    b.FileName,
				FileSize:    b.FileSize,
				CreatedAt:   b.CreatedAt,
			})
		}
	default:
		return nil, apperrors.NewValidationError("type", "type must be material or reference")
	}

	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// ListBlobOperations pages through the blob operation journal. An empty status lists all.
func (s *adminServiceImpl) ListBlobOperations(ctx context.Context, actorID int64, status models.BlobOpStatus, page, size int) (*dto.PaginatedResponse, error) {
	if err := s.authzService.ValidateAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	status = models.BlobOpStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown blob operation status")
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	ops, total, err := s.opsRepo.List(ctx, status, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing blob operations: %w", err)
	}

	return &dto.PaginatedResponse{
		Items:      ops,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// Reconcile runs one reconciliation pass on demand
func (s *adminServiceImpl) Reconcile(ctx context.Context, actorID int64) (*ReconcileReport, error) {
	if err := s.authzService.ValidateAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.reconciler.RunOnce(ctx)
}
