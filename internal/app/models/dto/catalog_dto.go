package dto

import (
	"github.com/yigit/nhance/internal/app/catalog"
)

// SubjectListResponse lists the subjects of one branch and semester
type SubjectListResponse struct {
	Branch   catalog.Branch    `json:"branch" example:"CSE"`
	Semester int               `json:"semester" example:"2"`
	Subjects []catalog.Subject `json:"subjects"`
}

// SubjectSummary is a subject with the number of uploads it has
type SubjectSummary struct {
	catalog.Subject
	ContentCount int `json:"contentCount" example:"3"`
}

// SemesterView backs the subject picker of a semester
type SemesterView struct {
	Branch   catalog.Branch   `json:"branch" example:"CSE"`
	Semester int              `json:"semester" example:"2"`
	Subjects []SubjectSummary `json:"subjects"`
}

// ModuleSlot is one module of a subject with its current upload.
// Additional counts uploads beyond the one shown.
type ModuleSlot struct {
	Module     catalog.Module    `json:"module"`
	Material   *MaterialResponse `json:"material,omitempty"`
	Additional int               `json:"additional" example:"0"`
}

// MaterialSubjectView backs the per-subject material page
type MaterialSubjectView struct {
	Branch   catalog.Branch  `json:"branch" example:"CSE"`
	Semester int             `json:"semester" example:"2"`
	Subject  catalog.Subject `json:"subject"`
	Slots    []ModuleSlot    `json:"slots"`
}

// ReferenceSubjectView backs the per-subject reference page
type ReferenceSubjectView struct {
	Branch   catalog.Branch       `json:"branch" example:"CSE"`
	Semester int                  `json:"semester" example:"2"`
	Subject  catalog.Subject      `json:"subject"`
	Books    []*ReferenceResponse `json:"books"`
}

// QuizPlaceholderResponse is returned by the quiz routes until quizzes exist
type QuizPlaceholderResponse struct {
	Branch   catalog.Branch    `json:"branch" example:"CSE"`
	Semester int               `json:"semester" example:"2"`
	Subject  *catalog.Subject  `json:"subject,omitempty"`
	Module   *catalog.Module   `json:"module,omitempty"`
	Subjects []catalog.Subject `json:"subjects,omitempty"`
	Modules  []catalog.Module  `json:"modules,omitempty"`
	Message  string            `json:"message" example:"Quizzes are coming soon"`
}

// RouteResolution describes how a client path is handled
type RouteResolution struct {
	Path          string            `json:"path" example:"/materials/semester/2"`
	Route         string            `json:"route" example:"materials.semester"`
	Params        map[string]string `json:"params,omitempty"`
	RequiresAuth  bool              `json:"requiresAuth"`
	RequiresAdmin bool              `json:"requiresAdmin"`
	Action        string            `json:"action" example:"render"`
	Location      string            `json:"location,omitempty" example:"/login"`
}
