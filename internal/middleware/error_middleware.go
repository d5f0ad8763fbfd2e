package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/logger"
)

// errorMapping ties a sentinel to its HTTP answer. When the error carries a
// CustomError message that message is shown instead of the default.
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first match wins
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Bad request"},
	{apperrors.ErrInvalidEmailToken, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "Invalid or expired verification link"},

	{apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},

	{apperrors.ErrEmailNotVerified, http.StatusForbidden, dto.ErrorCodeEmailNotVerified, "Please verify your email address before logging in"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrSignatureInvalid, http.StatusForbidden, dto.ErrorCodeForbidden, "Download link is invalid or has expired"},

	{apperrors.ErrProfileNotFound, http.StatusConflict, dto.ErrorCodeProfileMissing, "Your account has no profile. Please contact support."},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email is already registered"},
	{apperrors.ErrEmailAlreadyVerified, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email is already verified"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Conflict"},

	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrMaterialNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Material not found"},
	{apperrors.ErrReferenceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Reference book not found"},
	{apperrors.ErrSubjectNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Subject not found"},
	{apperrors.ErrBlobOpNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Blob operation not found"},
	{apperrors.ErrBlobNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "File no longer exists"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	{apperrors.ErrUploadFailed, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "File storage failed"},
	{apperrors.ErrStorageUnavailable, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "File storage is unavailable"},
}

// ErrorDetailFor returns the status and error detail err maps to
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		var ce *apperrors.CustomError
		if errors.As(err, &ce) && ce.Message != "" && m.status < http.StatusInternalServerError {
			message = ce.Message
		}
		detail := dto.NewErrorDetail(m.code, message)
		if field := apperrors.Field(err); field != "" {
			detail = detail.WithField(field)
		}
		return m.status, detail
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("Request failed")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}
