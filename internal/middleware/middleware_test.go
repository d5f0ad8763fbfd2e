package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/nhance/internal/app/auth"
	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// profileRepo answers GetProfile only
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

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "middleware-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "nhance-test",
	})
}

func tokenFor(t *testing.T, jwt *auth.JWTService, id int64, isAdmin bool) string {
	t.Helper()
	pair, err := jwt.GenerateTokenPair(&models.Account{
		User:    models.User{ID: id, Email: fmt.Sprintf("user%d@nhance.edu", id)},
		Profile: models.Profile{UserID: id, Branch: catalog.BranchCSE, IsAdmin: isAdmin},
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestErrorDetailFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.NewValidationError("title", "Please enter a title for the material."), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{apperrors.ErrEmailNotVerified, http.StatusForbidden, dto.ErrorCodeEmailNotVerified},
		{apperrors.NewForbiddenError("only admins can modify content"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{fmt.Errorf("login: %w", apperrors.ErrProfileNotFound), http.StatusConflict, dto.ErrorCodeProfileMissing},
		{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{apperrors.ErrMaterialNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrBlobNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.NewUploadError(errors.New("dial tcp: refused")), http.StatusBadGateway, dto.ErrorCodeExternalServiceError},
		{fmt.Errorf("boot: %w", apperrors.ErrStorageUnavailable), http.StatusBadGateway, dto.ErrorCodeExternalServiceError},
		{errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, detail := ErrorDetailFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
		})
	}

	_, detail := ErrorDetailFor(apperrors.NewValidationError("title", "Please enter a title for the material."))
	assert.Equal(t, "title", detail.Field)
	assert.Equal(t, "Please enter a title for the material.", detail.Message)

	_, detail = ErrorDetailFor(apperrors.ErrEmailAlreadyExists)
	assert.Equal(t, "Email is already registered", detail.Message)

	_, detail = ErrorDetailFor(apperrors.NewUploadError(errors.New("secret-host:9000 refused")))
	assert.NotContains(t, detail.Message, "secret-host")
}

func TestHandleAPIError_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	HandleAPIError(c, apperrors.ErrReferenceNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Reference book not found", resp.Error.Message)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwt := newJWT()
	repo := &profileRepo{profiles: map[int64]*models.Profile{
		1: {UserID: 1, IsAdmin: true},
		2: {UserID: 2, IsAdmin: false},
	}}
	m := NewAuthMiddleware(jwt, appauth.NewAuthorizationService(repo))

	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "branch": c.MustGet(ContextBranch)})
	})
	r.GET("/session", m.OptionalAuth(), func(c *gin.Context) {
		id, ok := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "authenticated": ok})
	})
	r.DELETE("/admin", m.JWTAuth(), m.AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, jwt
}

func TestJWTAuth(t *testing.T) {
	r, jwt := newAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Error.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, 2, false))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"branch":"CSE"}`, w.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	r, jwt := newAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session", nil))
	assert.JSONEq(t, `{"id":0,"authenticated":false}`, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, 1, true))
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"id":1,"authenticated":true}`, w.Body.String())
}

func TestAdminRequired_ChecksProfileNotClaim(t *testing.T) {
	r, jwt := newAuthRouter(t)

	// user 2 claims admin in the token but the profile says otherwise
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, 2, true))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, 1, false))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestValidateRequest(t *testing.T) {
	r := gin.New()
	r.POST("/login", ValidateRequest[dto.LoginRequest](), func(c *gin.Context) {
		body, ok := ValidatedBody[dto.LoginRequest](c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"email": body.Email})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.co"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
	assert.Equal(t, "Password", resp.Error.Field)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.co","password":"secret1"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"a@b.co"}`, w.Body.String())
}

func TestRequestLoggerAndMetrics(t *testing.T) {
	var buf strings.Builder
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)), Metrics())
	r.GET("/materials/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/materials/123", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/materials/123"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
