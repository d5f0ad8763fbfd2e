// Package controllers handles HTTP request handling
package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appauth "github.com/yigit/nhance/internal/app/auth"
	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/services"
	"github.com/yigit/nhance/internal/middleware"
	"github.com/yigit/nhance/internal/pkg/apperrors"
)

// parseSemester reads a semester path or query value
func parseSemester(raw string) (int, error) {
	semester, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !catalog.IsValidSemester(semester) {
		return 0, apperrors.NewValidationError("semester", "Please select a valid semester.")
	}
	return semester, nil
}

func parseBranch(raw string) (catalog.Branch, error) {
	branch, ok := catalog.ParseBranch(raw)
	if !ok {
		return "", apperrors.NewValidationError("branch", "Please select a valid branch.")
	}
	return branch, nil
}

func parseID(ctx *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("id", "Invalid ID format.")
	}
	return id, nil
}

// requireUserID returns the caller's ID set by JWTAuth
func requireUserID(ctx *gin.Context) (int64, error) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		return 0, apperrors.ErrUnauthenticated
	}
	return userID, nil
}

// branchScope decides whose branch a content page shows. Students always
// see their own branch; admins may pick another one with ?branch=.
type branchScope struct {
	authzService *appauth.AuthorizationService
}

func (s branchScope) resolve(ctx *gin.Context) (catalog.Branch, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return "", err
	}
	v, _ := ctx.Get(middleware.ContextBranch)
	own, _ := v.(catalog.Branch)

	requested := strings.TrimSpace(ctx.Query("branch"))
	if requested == "" || strings.EqualFold(requested, own.String()) {
		if own == "" {
			return "", apperrors.ErrProfileNotFound
		}
		return own, nil
	}

	isAdmin, err := s.authzService.IsAdmin(ctx.Request.Context(), userID)
	if err != nil {
		return "", err
	}
	if !isAdmin {
		return own, nil
	}
	return parseBranch(requested)
}

// bindUploadForm binds the text fields of a multipart upload and answers the
// request itself when binding fails. A body cut off by UploadLimit is
// reported against the file field.
func bindUploadForm(ctx *gin.Context, form interface{}) bool {
	err := ctx.ShouldBind(form)
	if err == nil {
		return true
	}
	if tooLarge := middleware.UploadTooLarge(ctx, err); tooLarge != nil {
		middleware.HandleAPIError(ctx, tooLarge)
		return false
	}
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
	return false
}

// uploadedFile opens the optional "file" part of a multipart request.
// A nil upload is returned when the part is missing.
func uploadedFile(ctx *gin.Context) (*services.FileUpload, io.Closer, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		if tooLarge := middleware.UploadTooLarge(ctx, err); tooLarge != nil {
			return nil, nil, tooLarge
		}
		return nil, nil, nil
	}
	return services.OpenFileHeader(fh)
}
