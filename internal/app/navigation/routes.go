// Package navigation describes the portal's page hierarchy and the access
// rules applied before a page is shown.
package navigation

import (
	"net/url"
	"strings"
)

// Route names
const (
	RouteLanding            = "landing"
	RouteLogin              = "login"
	RouteRegister           = "register"
	RouteHome               = "home"
	RouteMaterialSemesters  = "material_semesters"
	RouteMaterialSubjects   = "material_subjects"
	RouteMaterialView       = "material_view"
	RouteReferenceSemesters = "reference_semesters"
	RouteReferenceSubjects  = "reference_subjects"
	RouteReferenceView      = "reference_view"
	RouteQuizSemesters      = "quiz_semesters"
	RouteQuizSubjects       = "quiz_subjects"
	RouteQuizModules        = "quiz_modules"
	RouteQuizPlaceholder    = "quiz_placeholder"
	RouteAdmin              = "admin"
	RouteNotFound           = "not_found"
)

// Redirect targets
const (
	LoginPath = "/login"
	HomePath  = "/home"
)

const (
	paramPrefix     = ":"
	catchAllPattern = "*"
)

// Route is one page of the portal
type Route struct {
	Name         string `json:"name"`
	Pattern      string `json:"pattern"`
	RequiresAuth bool   `json:"requiresAuth"`
	AdminOnly    bool   `json:"adminOnly"`
}

var routeTable = []Route{
	{Name: RouteLanding, Pattern: "/"},
	{Name: RouteLogin, Pattern: "/login"},
	{Name: RouteRegister, Pattern: "/register"},
	{Name: RouteHome, Pattern: "/home", RequiresAuth: true},
	{Name: RouteMaterialSemesters, Pattern: "/materials", RequiresAuth: true},
	{Name: RouteMaterialSubjects, Pattern: "/materials/semester/:semester", RequiresAuth: true},
	{Name: RouteMaterialView, Pattern: "/materials/semester/:semester/subject/:subjectId", RequiresAuth: true},
	{Name: RouteReferenceSemesters, Pattern: "/references", RequiresAuth: true},
	{Name: RouteReferenceSubjects, Pattern: "/references/semester/:semester", RequiresAuth: true},
	{Name: RouteReferenceView, Pattern: "/references/semester/:semester/subject/:subjectId", RequiresAuth: true},
	{Name: RouteQuizSemesters, Pattern: "/quiz", RequiresAuth: true},
	{Name: RouteQuizSubjects, Pattern: "/quiz/semester/:semester", RequiresAuth: true},
	{Name: RouteQuizModules, Pattern: "/quiz/semester/:semester/subject/:subjectId", RequiresAuth: true},
	{Name: RouteQuizPlaceholder, Pattern: "/quiz/semester/:semester/subject/:subjectId/module/:moduleId", RequiresAuth: true},
	{Name: RouteAdmin, Pattern: "/admin", RequiresAuth: true, AdminOnly: true},
	{Name: RouteNotFound, Pattern: catchAllPattern},
}

// Routes returns the route table in match order
func Routes() []Route {
	out := make([]Route, len(routeTable))
	copy(out, routeTable)
	return out
}

// Match is the result of resolving a path
type Match struct {
	Route  Route
	Params map[string]string
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Resolve finds the route for path. Query strings and a trailing slash are
// ignored; anything unmatched resolves to the not-found route. Parameters
// are matched structurally, the pages validate their values.
func Resolve(path string) Match {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segments := splitPath(path)

	for _, r := range routeTable {
		if r.Pattern == catchAllPattern {
			continue
		}
		if params, ok := matchPattern(splitPath(r.Pattern), segments); ok {
			return Match{Route: r, Params: params}
		}
	}
	return Match{Route: routeTable[len(routeTable)-1], Params: map[string]string{}}
}

func matchPattern(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range pattern {
		seg := segments[i]
		if strings.HasPrefix(p, paramPrefix) {
			v, err := url.PathUnescape(seg)
			if err != nil || v == "" {
				return nil, false
			}
			params[strings.TrimPrefix(p, paramPrefix)] = v
			continue
		}
		if p != seg {
			return nil, false
		}
	}
	return params, true
}
