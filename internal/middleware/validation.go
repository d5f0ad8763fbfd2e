package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/nhance/internal/app/models/dto"
)

// ValidatedBodyKey is where ValidateRequest stores the decoded body
const ValidatedBodyKey = "validatedBody"

// ValidateRequest decodes the JSON body into a fresh T per request and runs
// the binding rules on it. Handlers read it back with ValidatedBody.
func ValidateRequest[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := new(T)
		if err := c.ShouldBindJSON(body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			return
		}
		c.Set(ValidatedBodyKey, body)
		c.Next()
	}
}

// ValidatedBody returns the body decoded by ValidateRequest[T]
func ValidatedBody[T any](c *gin.Context) (*T, bool) {
	v, ok := c.Get(ValidatedBodyKey)
	if !ok {
		return nil, false
	}
	body, ok := v.(*T)
	return body, ok
}
