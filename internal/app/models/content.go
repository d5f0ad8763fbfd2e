package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/nhance/internal/app/catalog"
)

// Material is an uploaded study document for one module of a subject.
// SubjectName and ModuleName are copied from the catalog at upload time.
type Material struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Title       string         `json:"title" db:"title" example:"Module 1 Notes"`
	Description *string        `json:"description,omitempty" db:"description"`
	Branch      catalog.Branch `json:"branch" db:"branch" example:"CSE"`
	Semester    int            `json:"semester" db:"semester" example:"2"`
	SubjectID   string         `json:"subjectId" db:"subject_id" example:"cse-2-3"`
	SubjectName string         `json:"subjectName" db:"subject_name" example:"Data Structures"`
	ModuleID    string         `json:"moduleId" db:"module_id" example:"module-1"`
	ModuleName  string         `json:"moduleName" db:"module_name" example:"Module 1"`
	FilePath    string         `json:"filePath" db:"file_path"`
	FileName    string         `json:"fileName" db:"file_name" example:"notes.pdf"`
	FileSize    int64          `json:"fileSize" db:"file_size" example:"1048576"`
	UploadedBy  int64          `json:"uploadedBy" db:"uploaded_by"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// ReferenceBook is an uploaded textbook for a subject, not tied to a module
type ReferenceBook struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Title       string         `json:"title" db:"title" example:"Introduction to Algorithms"`
	Author      string         `json:"author" db:"author" example:"Cormen"`
	Branch      catalog.Branch `json:"branch" db:"branch" example:"CSE"`
	Semester    int            `json:"semester" db:"semester" example:"2"`
	SubjectID   string         `json:"subjectId" db:"subject_id" example:"cse-2-3"`
	SubjectName string         `json:"subjectName" db:"subject_name" example:"Data Structures"`
	FilePath    string         `json:"filePath" db:"file_path"`
	FileName    string         `json:"fileName" db:"file_name" example:"clrs.pdf"`
	FileSize    int64          `json:"fileSize" db:"file_size"`
	UploadedBy  int64          `json:"uploadedBy" db:"uploaded_by"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// ContentFilter selects content for one subject. ModuleID only applies to materials.
type ContentFilter struct {
	Branch    catalog.Branch
	Semester  int
	SubjectID string
	ModuleID  string
}

// FileRef describes a blob that has been, or is about to be, stored
type FileRef struct {
	Path string
	Name string
	Size int64
}
