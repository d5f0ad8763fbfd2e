// Package catalog holds the static curriculum: branches, semesters, subjects
// and the fixed list of content modules. Everything here is read-only and
// every accessor hands out copies.
package catalog

import "strings"

// Branch is an academic department.
type Branch string

const (
	BranchCSE        Branch = "CSE"
	BranchEEE        Branch = "EEE"
	BranchMechanical Branch = "Mechanical"
	BranchECE        Branch = "ECE"
	BranchCivil      Branch = "Civil"
)

const (
	FirstSemester = 1
	LastSemester  = 8
)

var branches = []Branch{BranchCSE, BranchEEE, BranchMechanical, BranchECE, BranchCivil}

// Subject is a course taught in one (branch, semester) pair.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Module identifies a content slot within a subject.
type Module struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// String returns the branch name
func (b Branch) String() string {
	return string(b)
}

// IsValid reports whether b is one of the known branches
func (b Branch) IsValid() bool {
	_, ok := curriculum[b]
	return ok
}

// Branches returns the known branches in display order.
func Branches() []Branch {
	out := make([]Branch, len(branches))
	copy(out, branches)
	return out
}

// ParseBranch matches s against the known branches, ignoring case and
// surrounding whitespace.
func ParseBranch(s string) (Branch, bool) {
	s = strings.TrimSpace(s)
	for _, b := range branches {
		if strings.EqualFold(string(b), s) {
			return b, true
		}
	}
	return "", false
}

// IsValidSemester reports whether semester is within 1..8.
func IsValidSemester(semester int) bool {
	return semester >= FirstSemester && semester <= LastSemester
}

// AllSemesters returns 1..8.
func AllSemesters() []int {
	out := make([]int, 0, LastSemester)
	for s := FirstSemester; s <= LastSemester; s++ {
		out = append(out, s)
	}
	return out
}

// AllModules returns the seven modules in their fixed order.
func AllModules() []Module {
	out := make([]Module, len(modules))
	copy(out, modules)
	return out
}

// SubjectsFor returns the subjects of a branch and semester in catalog order.
// Unknown combinations yield an empty, non-nil slice.
func SubjectsFor(branch Branch, semester int) []Subject {
	subjects := curriculum[branch][semester]
	out := make([]Subject, len(subjects))
	copy(out, subjects)
	return out
}

// FindSubject looks up a subject by id within a branch and semester.
func FindSubject(branch Branch, semester int, id string) (Subject, bool) {
	for _, s := range curriculum[branch][semester] {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// FindModule looks up a module by id.
func FindModule(id string) (Module, bool) {
	for _, m := range modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}
