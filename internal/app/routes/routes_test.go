package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/nhance/internal/app/auth"
	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/controllers"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/app/services"
	"github.com/yigit/nhance/internal/middleware"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	adminID   int64 = 1
	studentID int64 = 2
)

type profileRepo struct {
	repositories.IUserRepository
}

func (profileRepo) GetProfile(_ context.Context, userID int64) (*models.Profile, error) {
	switch userID {
	case adminID:
		return &models.Profile{UserID: adminID, Branch: catalog.BranchCSE, IsAdmin: true}, nil
	case studentID:
		return &models.Profile{UserID: studentID, Branch: catalog.BranchCSE}, nil
	}
	return nil, apperrors.ErrProfileNotFound
}

// received is what a handler passed on to the content service
type received struct {
	actorID  int64
	id       uuid.UUID
	form     interface{}
	fileName string
	fileType string
	fileBody string
	hasFile  bool
}

func receive(actorID int64, id uuid.UUID, form interface{}, file *services.FileUpload) received {
	r := received{actorID: actorID, id: id, form: form}
	if file != nil {
		body, _ := io.ReadAll(file.Reader)
		r.hasFile = true
		r.fileName, r.fileType, r.fileBody = file.Name, file.ContentType, string(body)
	}
	return r
}

type recordingMaterials struct {
	services.MaterialService
	calls []received
}

func (s *recordingMaterials) CreateMaterial(_ context.Context, actorID int64, form *dto.MaterialForm, file *services.FileUpload) (*dto.MaterialResponse, error) {
	s.calls = append(s.calls, receive(actorID, uuid.Nil, form, file))
	return &dto.MaterialResponse{ID: uuid.New(), Title: form.Title, Semester: form.Semester, FileName: file.Name}, nil
}

func (s *recordingMaterials) UpdateMaterial(_ context.Context, actorID int64, id uuid.UUID, form *dto.MaterialUpdateForm, file *services.FileUpload) (*dto.MaterialResponse, error) {
	s.calls = append(s.calls, receive(actorID, id, form, file))
	return &dto.MaterialResponse{ID: id}, nil
}

func (s *recordingMaterials) DeleteMaterial(_ context.Context, actorID int64, id uuid.UUID) error {
	s.calls = append(s.calls, receive(actorID, id, nil, nil))
	return nil
}

type recordingReferences struct {
	services.ReferenceService
	calls []received
}

func (s *recordingReferences) CreateReference(_ context.Context, actorID int64, form *dto.ReferenceForm, file *services.FileUpload) (*dto.ReferenceResponse, error) {
	s.calls = append(s.calls, receive(actorID, uuid.Nil, form, file))
	return &dto.ReferenceResponse{ID: uuid.New(), Title: form.Title, Author: form.Author, FileName: file.Name}, nil
}

func (s *recordingReferences) UpdateReference(_ context.Context, actorID int64, id uuid.UUID, form *dto.ReferenceUpdateForm, file *services.FileUpload) (*dto.ReferenceResponse, error) {
	s.calls = append(s.calls, receive(actorID, id, form, file))
	return &dto.ReferenceResponse{ID: id}, nil
}

func (s *recordingReferences) DeleteReference(_ context.Context, actorID int64, id uuid.UUID) error {
	s.calls = append(s.calls, receive(actorID, id, nil, nil))
	return nil
}

type testAPI struct {
	router     *gin.Engine
	materials  *recordingMaterials
	references *recordingReferences
	tokens     map[int64]string
}

func newTestAPI(t *testing.T, maxUploadSize int64) *testAPI {
	t.Helper()
	jwt := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "routes-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "nhance-test",
	})
	authz := appauth.NewAuthorizationService(profileRepo{})

	api := &testAPI{
		router:     gin.New(),
		materials:  &recordingMaterials{},
		references: &recordingReferences{},
		tokens:     map[int64]string{},
	}
	for _, id := range []int64{adminID, studentID} {
		pair, err := jwt.GenerateTokenPair(&models.Account{
			User:    models.User{ID: id, Email: fmt.Sprintf("user%d@nhance.edu", id)},
			Profile: models.Profile{UserID: id, Branch: catalog.BranchCSE},
		})
		require.NoError(t, err)
		api.tokens[id] = pair.AccessToken
	}

	SetupRouter(api.router, Handlers{
		Auth:       &controllers.AuthController{},
		User:       &controllers.UserController{},
		Catalog:    controllers.NewCatalogController(),
		Navigation: &controllers.NavigationController{},
		Material:   controllers.NewMaterialController(api.materials, nil, authz, zerolog.Nop()),
		Reference:  controllers.NewReferenceController(api.references, nil, authz, zerolog.Nop()),
		Quiz:       &controllers.QuizController{},
		Admin:      &controllers.AdminController{},
	}, middleware.NewAuthMiddleware(jwt, authz), maxUploadSize)
	return api
}

type upload struct {
	name        string
	contentType string
	body        string
}

type field struct{ name, value string }

func multipartBody(t *testing.T, fields []field, file *upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		require.NoError(t, mw.WriteField(f.name, f.value))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.name))
		h.Set("Content-Type", file.contentType)
		pw, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.WriteString(pw, file.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (api *testAPI) send(t *testing.T, method, target string, as int64, fields []field, file *upload) (*httptest.ResponseRecorder, dto.APIResponse) {
	t.Helper()
	var req *http.Request
	if fields == nil && file == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		body, contentType := multipartBody(t, fields, file)
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", contentType)
	}
	if token, ok := api.tokens[as]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	var resp dto.APIResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func errorField(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Field
}

func createdID(t *testing.T, resp dto.APIResponse) string {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	id, ok := data["id"].(string)
	require.True(t, ok)
	return id
}

var materialFields = []field{
	{"title", "Module 1 Notes"},
	{"description", "Stacks and queues"},
	{"branch", "CSE"},
	{"semester", "2"},
	{"subjectId", "cse-2-3"},
	{"moduleId", "module-1"},
}

func TestMaterialRoutes_CreateUpdateDelete(t *testing.T) {
	api := newTestAPI(t, 1<<20)

	w, resp := api.send(t, http.MethodPost, "/api/v1/materials", adminID, materialFields,
		&upload{"ds-notes.pdf", "application/pdf", "%PDF-1.4 notes"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := createdID(t, resp)

	require.Len(t, api.materials.calls, 1)
	create := api.materials.calls[0]
	assert.Equal(t, adminID, create.actorID)
	assert.Equal(t, &dto.MaterialForm{
		Title: "Module 1 Notes", Description: "Stacks and queues", Branch: "CSE",
		Semester: 2, SubjectID: "cse-2-3", ModuleID: "module-1",
	}, create.form)
	assert.Equal(t, "ds-notes.pdf", create.fileName)
	assert.Equal(t, "application/pdf", create.fileType)
	assert.Equal(t, "%PDF-1.4 notes", create.fileBody)

	// file only: no form fields reach the service
	w, _ = api.send(t, http.MethodPut, "/api/v1/materials/"+id, adminID, []field{},
		&upload{"ds-notes-v2.pdf", "application/pdf", "%PDF-1.4 v2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, api.materials.calls, 2)
	replace := api.materials.calls[1]
	assert.Equal(t, id, replace.id.String())
	assert.Equal(t, &dto.MaterialUpdateForm{}, replace.form)
	assert.True(t, replace.hasFile)
	assert.Equal(t, "ds-notes-v2.pdf", replace.fileName)

	w, _ = api.send(t, http.MethodPut, "/api/v1/materials/"+id, adminID, []field{{"title", "Renamed"}}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rename := api.materials.calls[2]
	require.NotNil(t, rename.form.(*dto.MaterialUpdateForm).Title)
	assert.Equal(t, "Renamed", *rename.form.(*dto.MaterialUpdateForm).Title)
	assert.Nil(t, rename.form.(*dto.MaterialUpdateForm).Description)
	assert.False(t, rename.hasFile)

	w, _ = api.send(t, http.MethodDelete, "/api/v1/materials/"+id, adminID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, api.materials.calls, 4)
	assert.Equal(t, id, api.materials.calls[3].id.String())
}

func TestMaterialRoutes_OnlyAdminsMutate(t *testing.T) {
	api := newTestAPI(t, 1<<20)
	id := uuid.New().String()
	file := &upload{"notes.pdf", "application/pdf", "%PDF-1.4"}

	w, _ := api.send(t, http.MethodPost, "/api/v1/materials", studentID, materialFields, file)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.send(t, http.MethodPut, "/api/v1/materials/"+id, studentID, []field{{"title", "x"}}, file)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.send(t, http.MethodDelete, "/api/v1/materials/"+id, studentID, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.send(t, http.MethodPost, "/api/v1/materials", 0, materialFields, file)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Empty(t, api.materials.calls)
}

func TestMaterialRoutes_BadForm(t *testing.T) {
	api := newTestAPI(t, 1<<20)

	fields := append([]field{}, materialFields...)
	fields[3] = field{"semester", "two"}
	w, _ := api.send(t, http.MethodPost, "/api/v1/materials", adminID, fields, &upload{"a.pdf", "application/pdf", "%PDF"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.send(t, http.MethodPut, "/api/v1/materials/not-a-uuid", adminID, []field{{"title", "x"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", errorField(t, w))

	assert.Empty(t, api.materials.calls)
}

func TestUploadRoutes_OversizeBodyIsRejected(t *testing.T) {
	const maxUpload = 64 << 10
	api := newTestAPI(t, maxUpload)
	big := &upload{"huge.pdf", "application/pdf", strings.Repeat("x", 2<<20)}

	w, _ := api.send(t, http.MethodPost, "/api/v1/materials", adminID, materialFields, big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file", errorField(t, w))

	// without a declared length the body is cut off while binding
	body, contentType := multipartBody(t, []field{{"title", "Big"}, {"author", "A"}}, big)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/references/"+uuid.New().String(), body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+api.tokens[adminID])
	req.ContentLength = -1
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file", errorField(t, w))

	assert.Empty(t, api.materials.calls)
	assert.Empty(t, api.references.calls)
}

var referenceFields = []field{
	{"title", "Introduction to Algorithms"},
	{"author", "Cormen"},
	{"branch", "CSE"},
	{"semester", "2"},
	{"subjectId", "cse-2-3"},
}

func TestReferenceRoutes_CreateUpdateDelete(t *testing.T) {
	api := newTestAPI(t, 1<<20)

	w, resp := api.send(t, http.MethodPost, "/api/v1/references", adminID, referenceFields,
		&upload{"clrs.pdf", "application/pdf", "%PDF-1.4 clrs"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := createdID(t, resp)

	require.Len(t, api.references.calls, 1)
	assert.Equal(t, &dto.ReferenceForm{
		Title: "Introduction to Algorithms", Author: "Cormen", Branch: "CSE", Semester: 2, SubjectID: "cse-2-3",
	}, api.references.calls[0].form)
	assert.Equal(t, "%PDF-1.4 clrs", api.references.calls[0].fileBody)

	w, _ = api.send(t, http.MethodPut, "/api/v1/references/"+id, adminID, []field{},
		&upload{"clrs-3rd.pdf", "application/pdf", "%PDF-1.4 third"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	replace := api.references.calls[1]
	assert.Equal(t, &dto.ReferenceUpdateForm{}, replace.form)
	assert.Equal(t, "clrs-3rd.pdf", replace.fileName)

	w, _ = api.send(t, http.MethodDelete, "/api/v1/references/"+id, adminID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, api.references.calls, 3)
}

func TestReferenceRoutes_OnlyAdminsMutate(t *testing.T) {
	api := newTestAPI(t, 1<<20)
	id := uuid.New().String()
	file := &upload{"clrs.pdf", "application/pdf", "%PDF-1.4"}

	w, _ := api.send(t, http.MethodPost, "/api/v1/references", studentID, referenceFields, file)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.send(t, http.MethodPut, "/api/v1/references/"+id, studentID, []field{{"author", "x"}}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.send(t, http.MethodDelete, "/api/v1/references/"+id, studentID, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Empty(t, api.references.calls)
}
