package apperrors

import "errors"

// Resource errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
)

// Authentication errors
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
)

// Authorization errors
var (
	ErrPermissionDenied = errors.New("permission denied")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")
)

// User and profile errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Content errors
var (
	ErrMaterialNotFound  = errors.New("material not found")
	ErrReferenceNotFound = errors.New("reference book not found")
	ErrSubjectNotFound   = errors.New("subject not found")
	ErrBlobOpNotFound    = errors.New("blob operation not found")
)

// Blob transfer errors
var (
	ErrUploadFailed       = errors.New("upload failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrBlobNotFound       = errors.New("blob not found")
	ErrSignatureInvalid   = errors.New("invalid or expired signature")
)

// Email verification errors
var (
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrInvalidEmailToken    = errors.New("invalid or expired email verification token")
	ErrEmailAlreadyVerified = errors.New("email already verified")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError reports a single invalid field. The field name travels in
// Details so the HTTP layer can surface it.
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// NewUploadError wraps a storage failure as a transport error.
func NewUploadError(cause error) error {
	return &CustomError{
		Err:     errors.Join(ErrUploadFailed, cause),
		Message: "failed to upload file: " + cause.Error(),
	}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// Field returns the offending field of a validation error, if any.
func Field(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Details != nil {
		if f, ok := ce.Details["field"].(string); ok {
			return f
		}
	}
	return ""
}
