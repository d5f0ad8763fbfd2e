package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/pkg/apperrors"
)

// QuizComingSoon is the message of every quiz page
const QuizComingSoon = "Quizzes are coming soon"

// ViewService assembles the per-semester and per-subject pages
type ViewService interface {
	SemesterView(ctx context.Context, kind models.ContentKind, branch catalog.Branch, semester int) (*dto.SemesterView, error)
	MaterialSubjectView(ctx context.Context, branch catalog.Branch, semester int, subjectID string) (*dto.MaterialSubjectView, error)
	ReferenceSubjectView(ctx context.Context, branch catalog.Branch, semester int, subjectID string) (*dto.ReferenceSubjectView, error)
	QuizView(branch catalog.Branch, semester int, subjectID, moduleID string) (*dto.QuizPlaceholderResponse, error)
}

type viewServiceImpl struct {
	materialRepo  repositories.IMaterialRepository
	referenceRepo repositories.IReferenceRepository
}

// NewViewService creates a new ViewService
func NewViewService(materialRepo repositories.IMaterialRepository, referenceRepo repositories.IReferenceRepository) ViewService {
	return &viewServiceImpl{
		materialRepo:  materialRepo,
		referenceRepo: referenceRepo,
	}
}

func lookupSubject(branch catalog.Branch, semester int, subjectID string) (catalog.Subject, error) {
	if err := validateFilter(models.ContentFilter{Branch: branch, Semester: semester}); err != nil {
		return catalog.Subject{}, err
	}
	subject, ok := catalog.FindSubject(branch, semester, strings.TrimSpace(subjectID))
	if !ok {
		return catalog.Subject{}, apperrors.ErrSubjectNotFound
	}
	return subject, nil
}

// SemesterView lists the subjects of a semester with how many uploads of kind each has
func (s *viewServiceImpl) SemesterView(ctx context.Context, kind models.ContentKind, branch catalog.Branch, semester int) (*dto.SemesterView, error) {
	filter := models.ContentFilter{Branch: branch, Semester: semester}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	switch kind {
	case models.ContentMaterial:
		items, err := s.materialRepo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("error listing materials: %w", err)
		}
		for _, m := range items {
			counts[m.SubjectID]++
		}
	case models.ContentReference:
		items, err := s.referenceRepo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("error listing reference books: %w", err)
		}
		for _, r := range items {
			counts[r.SubjectID]++
		}
	default:
		return nil, apperrors.NewBadRequestError("unknown content kind")
	}

	subjects := catalog.SubjectsFor(branch, semester)
	view := &dto.SemesterView{
		Branch:   branch,
		Semester: semester,
		Subjects: make([]dto.SubjectSummary, 0, len(subjects)),
	}
	for _, subject := range subjects {
		view.Subjects = append(view.Subjects, dto.SubjectSummary{Subject: subject, ContentCount: counts[subject.ID]})
	}
	return view, nil
}

// MaterialSubjectView shows one slot per module. The newest upload fills the
// slot and older uploads for the same module are only counted.
func (s *viewServiceImpl) MaterialSubjectView(ctx context.Context, branch catalog.Branch, semester int, subjectID string) (*dto.MaterialSubjectView, error) {
	subject, err := lookupSubject(branch, semester, subjectID)
	if err != nil {
		return nil, err
	}

	items, err := s.materialRepo.List(ctx, models.ContentFilter{Branch: branch, Semester: semester, SubjectID: subject.ID})
	if err != nil {
		return nil, fmt.Errorf("error listing materials: %w", err)
	}

	byModule := make(map[string][]*models.Material)
	for _, m := range items {
		byModule[m.ModuleID] = append(byModule[m.ModuleID], m)
	}

	modules := catalog.AllModules()
	view := &dto.MaterialSubjectView{
		Branch:   branch,
		Semester: semester,
		Subject:  subject,
		Slots:    make([]dto.ModuleSlot, 0, len(modules)),
	}
	for _, module := range modules {
		slot := dto.ModuleSlot{Module: module}
		if uploads := byModule[module.ID]; len(uploads) > 0 {
			slot.Material = dto.NewMaterialResponse(uploads[0])
			slot.Additional = len(uploads) - 1
		}
		view.Slots = append(view.Slots, slot)
	}
	return view, nil
}

// ReferenceSubjectView lists the reference books of a subject, newest first
func (s *viewServiceImpl) ReferenceSubjectView(ctx context.Context, branch catalog.Branch, semester int, subjectID string) (*dto.ReferenceSubjectView, error) {
	subject, err := lookupSubject(branch, semester, subjectID)
	if err != nil {
		return nil, err
	}

	books, err := s.referenceRepo.List(ctx, models.ContentFilter{Branch: branch, Semester: semester, SubjectID: subject.ID})
	if err != nil {
		return nil, fmt.Errorf("error listing reference books: %w", err)
	}

	return &dto.ReferenceSubjectView{
		Branch:   branch,
		Semester: semester,
		Subject:  subject,
		Books:    dto.NewReferenceResponses(books),
	}, nil
}

// QuizView returns the quiz placeholder for a semester, subject or module.
// Empty subjectID lists subjects; empty moduleID lists modules.
func (s *viewServiceImpl) QuizView(branch catalog.Branch, semester int, subjectID, moduleID string) (*dto.QuizPlaceholderResponse, error) {
	if err := validateFilter(models.ContentFilter{Branch: branch, Semester: semester}); err != nil {
		return nil, err
	}
	resp := &dto.QuizPlaceholderResponse{Branch: branch, Semester: semester, Message: QuizComingSoon}

	if subjectID == "" {
		resp.Subjects = catalog.SubjectsFor(branch, semester)
		return resp, nil
	}
	subject, err := lookupSubject(branch, semester, subjectID)
	if err != nil {
		return nil, err
	}
	resp.Subject = &subject

	if moduleID == "" {
		resp.Modules = catalog.AllModules()
		return resp, nil
	}
	module, ok := catalog.FindModule(strings.TrimSpace(moduleID))
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("module not found")
	}
	resp.Module = &module
	return resp, nil
}
