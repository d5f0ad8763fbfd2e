package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/nhance/internal/app/auth"
	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/navigation"
	"github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/middleware"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/blobstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func perform(t *testing.T, r http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// asUser stands in for JWTAuth
func asUser(id int64, branch catalog.Branch) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextBranch, branch)
		c.Next()
	}
}

type profileRepo struct {
	repositories.IUserRepository
	profiles map[int64]*models.Profile
}

func (r *profileRepo) GetProfile(_ context.Context, userID int64) (*models.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	return p, nil
}

func TestParseSemester(t *testing.T) {
	for _, raw := range []string{"1", " 8 "} {
		_, err := parseSemester(raw)
		assert.NoError(t, err, raw)
	}
	for _, raw := range []string{"", "0", "9", "two"} {
		_, err := parseSemester(raw)
		require.Error(t, err, raw)
		assert.Equal(t, "semester", apperrors.Field(err))
	}
}

func TestCatalog_GetSubjects(t *testing.T) {
	r := gin.New()
	c := NewCatalogController()
	r.GET("/branches/:branch/semesters/:semester/subjects", c.GetSubjects)

	w, env := perform(t, r, http.MethodGet, "/branches/CSE/semesters/2/subjects")
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.SubjectListResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, catalog.BranchCSE, list.Branch)
	assert.Equal(t, 2, list.Semester)
	assert.Equal(t, catalog.SubjectsFor(catalog.BranchCSE, 2), list.Subjects)

	w, env = perform(t, r, http.MethodGet, "/branches/CSE/semesters/9/subjects")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "semester", env.Error.Field)

	w, env = perform(t, r, http.MethodGet, "/branches/Physics/semesters/2/subjects")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "branch", env.Error.Field)
}

type staticSessions map[int64]*dto.SessionResponse

func (s staticSessions) Session(_ context.Context, userID int64) *dto.SessionResponse {
	if resp, ok := s[userID]; ok {
		return resp
	}
	return &dto.SessionResponse{State: dto.SessionAnonymous}
}

func TestNavigation_Resolve(t *testing.T) {
	sessions := staticSessions{
		5: {State: dto.SessionAuthenticated, User: &dto.UserResponse{ID: 5, Name: "Student", Branch: catalog.BranchCSE}},
	}
	c := NewNavigationController(sessions)

	anonymous := gin.New()
	anonymous.GET("/resolve", c.Resolve)
	signedIn := gin.New()
	signedIn.GET("/resolve", asUser(5, catalog.BranchCSE), c.Resolve)

	decode := func(env envelope) dto.RouteResolution {
		var res dto.RouteResolution
		require.NoError(t, json.Unmarshal(env.Data, &res))
		return res
	}

	t.Run("anonymous visitor is sent to login", func(t *testing.T) {
		w, env := perform(t, anonymous, http.MethodGet, "/resolve?path="+url.QueryEscape("/materials/semester/2"))
		require.Equal(t, http.StatusOK, w.Code)
		res := decode(env)
		assert.Equal(t, navigation.RouteMaterialSubjects, res.Route)
		assert.Equal(t, map[string]string{"semester": "2"}, res.Params)
		assert.Equal(t, string(navigation.ActionRedirect), res.Action)
		assert.Equal(t, navigation.LoginPath, res.Location)
	})

	t.Run("public page renders", func(t *testing.T) {
		_, env := perform(t, anonymous, http.MethodGet, "/resolve?path=/login")
		assert.Equal(t, string(navigation.ActionRender), decode(env).Action)
	})

	t.Run("student renders protected page", func(t *testing.T) {
		_, env := perform(t, signedIn, http.MethodGet, "/resolve?path="+url.QueryEscape("/materials/semester/2/subject/cse-2-3"))
		res := decode(env)
		assert.Equal(t, navigation.RouteMaterialView, res.Route)
		assert.Equal(t, string(navigation.ActionRender), res.Action)
		assert.True(t, res.RequiresAuth)
	})

	t.Run("student is kept out of admin", func(t *testing.T) {
		_, env := perform(t, signedIn, http.MethodGet, "/resolve?path=/admin")
		res := decode(env)
		assert.True(t, res.RequiresAdmin)
		assert.Equal(t, string(navigation.ActionRedirect), res.Action)
		assert.Equal(t, navigation.HomePath, res.Location)
	})

	t.Run("missing path", func(t *testing.T) {
		w, env := perform(t, anonymous, http.MethodGet, "/resolve")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "path", env.Error.Field)
	})
}

func TestFileController_ServeFile(t *testing.T) {
	local, err := blobstore.NewLocalBackend(t.TempDir(), "http://files.test", "signing-secret")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, local.EnsureBucket(ctx, "materials"))
	require.NoError(t, local.Put(ctx, "materials", "cse/2/notes.pdf", strings.NewReader("%PDF-1.4 body"), 13, "application/pdf"))

	r := gin.New()
	r.GET(blobstore.FilesRoutePrefix+"/:bucket/*path", NewFileController(local).ServeFile)

	link, err := local.PresignGet(ctx, "materials", "cse/2/notes.pdf", time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 body", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="notes.pdf"`)

	q := u.Query()
	q.Set("signature", strings.Repeat("0", 64))
	u.RawQuery = q.Encode()
	w, env := perform(t, r, http.MethodGet, u.RequestURI())
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeForbidden, env.Error.Code)
}

func TestBranchScope(t *testing.T) {
	repo := &profileRepo{profiles: map[int64]*models.Profile{
		1: {UserID: 1, Branch: catalog.BranchCSE},
		2: {UserID: 2, Branch: catalog.BranchCSE, IsAdmin: true},
	}}
	scope := branchScope{authzService: appauth.NewAuthorizationService(repo)}

	resolve := func(userID int64, branch catalog.Branch, query string) (catalog.Branch, error) {
		w := httptest.NewRecorder()
		ctx, _ := gin.CreateTestContext(w)
		ctx.Request = httptest.NewRequest(http.MethodGet, "/materials"+query, nil)
		if userID > 0 {
			ctx.Set(middleware.ContextUserID, userID)
			ctx.Set(middleware.ContextBranch, branch)
		}
		return scope.resolve(ctx)
	}

	got, err := resolve(1, catalog.BranchCSE, "?branch=EEE")
	require.NoError(t, err)
	assert.Equal(t, catalog.BranchCSE, got, "students stay on their own branch")

	got, err = resolve(2, catalog.BranchCSE, "?branch=EEE")
	require.NoError(t, err)
	assert.Equal(t, catalog.BranchEEE, got)

	_, err = resolve(2, catalog.BranchCSE, "?branch=Physics")
	assert.Equal(t, "branch", apperrors.Field(err))

	_, err = resolve(3, "", "")
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	_, err = resolve(0, "", "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestFileController_ServesEscapedPath(t *testing.T) {
	local, err := blobstore.NewLocalBackend(t.TempDir(), "http://files.test", "signing-secret")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, local.EnsureBucket(ctx, "references"))
	require.NoError(t, local.Put(ctx, "references", "cse/2/week 1 #notes.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf"))

	r := gin.New()
	r.GET(blobstore.FilesRoutePrefix+"/:bucket/*path", NewFileController(local).ServeFile)

	link, err := local.PresignGet(ctx, "references", "cse/2/week 1 #notes.pdf", time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}
