package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/models"
)

// MaterialForm carries the multipart fields of a material upload.
// Blank checks happen after trimming in the service.
type MaterialForm struct {
	Title       string `form:"title" example:"Module 1 Notes"`
	Description string `form:"description"`
	Branch      string `form:"branch" example:"CSE"`
	Semester    int    `form:"semester" example:"2"`
	SubjectID   string `form:"subjectId" example:"cse-2-3"`
	ModuleID    string `form:"moduleId" example:"module-1"`
}

// MaterialUpdateForm holds optional fields; nil means keep the stored value
type MaterialUpdateForm struct {
	Title       *string `form:"title"`
	Description *string `form:"description"`
}

// ReferenceForm carries the multipart fields of a reference upload
type ReferenceForm struct {
	Title     string `form:"title" example:"Introduction to Algorithms"`
	Author    string `form:"author" example:"Cormen"`
	Branch    string `form:"branch" example:"CSE"`
	Semester  int    `form:"semester" example:"2"`
	SubjectID string `form:"subjectId" example:"cse-2-3"`
}

// ReferenceUpdateForm holds optional fields; nil means keep the stored value
type ReferenceUpdateForm struct {
	Title  *string `form:"title"`
	Author *string `form:"author"`
}

// MaterialResponse is the API view of a material
type MaterialResponse struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title" example:"Module 1 Notes"`
	Description *string        `json:"description,omitempty"`
	Branch      catalog.Branch `json:"branch" example:"CSE"`
	Semester    int            `json:"semester" example:"2"`
	SubjectID   string         `json:"subjectId" example:"cse-2-3"`
	SubjectName string         `json:"subjectName" example:"Data Structures"`
	ModuleID    string         `json:"moduleId" example:"module-1"`
	ModuleName  string         `json:"moduleName" example:"Module 1"`
	FileName    string         `json:"fileName" example:"notes.pdf"`
	FileSize    int64          `json:"fileSize" example:"1048576"`
	UploadedBy  int64          `json:"uploadedBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// NewMaterialResponse converts a model into its API view
func NewMaterialResponse(m *models.Material) *MaterialResponse {
	if m == nil {
		return nil
	}
	return &MaterialResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Branch:      m.Branch,
		Semester:    m.Semester,
		SubjectID:   m.SubjectID,
		SubjectName: m.SubjectName,
		ModuleID:    m.ModuleID,
		ModuleName:  m.ModuleName,
		FileName:    m.FileName,
		FileSize:    m.FileSize,
		UploadedBy:  m.UploadedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// NewMaterialResponses converts a list of materials
func NewMaterialResponses(items []*models.Material) []*MaterialResponse {
	out := make([]*MaterialResponse, 0, len(items))
	for _, m := range items {
		out = append(out, NewMaterialResponse(m))
	}
	return out
}

// ReferenceResponse is the API view of a reference book
type ReferenceResponse struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title" example:"Introduction to Algorithms"`
	Author      string         `json:"author" example:"Cormen"`
	Branch      catalog.Branch `json:"branch" example:"CSE"`
	Semester    int            `json:"semester" example:"2"`
	SubjectID   string         `json:"subjectId" example:"cse-2-3"`
	SubjectName string         `json:"subjectName" example:"Data Structures"`
	FileName    string         `json:"fileName" example:"clrs.pdf"`
	FileSize    int64          `json:"fileSize"`
	UploadedBy  int64          `json:"uploadedBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// NewReferenceResponse converts a model into its API view
func NewReferenceResponse(r *models.ReferenceBook) *ReferenceResponse {
	if r == nil {
		return nil
	}
	return &ReferenceResponse{
		ID:          r.ID,
		Title:       r.Title,
		Author:      r.Author,
		Branch:      r.Branch,
		Semester:    r.Semester,
		SubjectID:   r.SubjectID,
		SubjectName: r.SubjectName,
		FileName:    r.FileName,
		FileSize:    r.FileSize,
		UploadedBy:  r.UploadedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// NewReferenceResponses converts a list of reference books
func NewReferenceResponses(items []*models.ReferenceBook) []*ReferenceResponse {
	out := make([]*ReferenceResponse, 0, len(items))
	for _, r := range items {
		out = append(out, NewReferenceResponse(r))
	}
	return out
}

// DownloadResponse carries a signed, expiring download link
type DownloadResponse struct {
	URL       string    `json:"url"`
	FileName  string    `json:"fileName" example:"notes.pdf"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ContentOverviewItem is one row of the admin content listing
type ContentOverviewItem struct {
	Kind        models.ContentKind `json:"kind" example:"material"`
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Branch      catalog.Branch     `json:"branch"`
	Semester    int                `json:"semester"`
	SubjectID   string             `json:"subjectId"`
	SubjectName string             `json:"subjectName"`
	ModuleID    string             `json:"moduleId,omitempty"`
	FileName    string             `json:"fileName"`
	FileSize    int64              `json:"fileSize"`
	CreatedAt   time.Time          `json:"createdAt"`
}
