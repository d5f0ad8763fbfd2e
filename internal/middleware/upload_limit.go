package middleware

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/nhance/internal/pkg/apperrors"
)

// multipartOverhead is room for the text fields and part headers of an
// upload form on top of the file cap
const multipartOverhead int64 = 1 << 20

const contextUploadLimit = "uploadLimit"

// UploadLimit caps the request body of upload routes at maxFileSize plus
// multipartOverhead. A body that declares a larger length is rejected before
// any of it is read; one without a length is cut off at the cap.
func UploadLimit(maxFileSize int64) gin.HandlerFunc {
	limit := maxFileSize + multipartOverhead
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			HandleAPIError(c, fileTooLarge(maxFileSize))
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Set(contextUploadLimit, maxFileSize)
		c.Next()
	}
}

// UploadTooLarge returns the validation error for err when it comes from
// reading past UploadLimit, and nil otherwise
func UploadTooLarge(c *gin.Context, err error) error {
	if err == nil {
		return nil
	}
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) &&
		!errors.Is(err, multipart.ErrMessageTooLarge) &&
		!strings.Contains(err.Error(), "request body too large") {
		return nil
	}
	return fileTooLarge(c.GetInt64(contextUploadLimit))
}

func fileTooLarge(maxFileSize int64) error {
	switch {
	case maxFileSize >= 1<<20:
		return apperrors.NewValidationError("file", fmt.Sprintf("File exceeds the %d MB limit.", maxFileSize>>20))
	case maxFileSize > 0:
		return apperrors.NewValidationError("file", fmt.Sprintf("File exceeds the %d KB limit.", maxFileSize>>10))
	}
	return apperrors.NewValidationError("file", "File is too large.")
}
