package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/nhance/internal/app/auth"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/auth"
)

// Context keys set by JWTAuth and OptionalAuth
const (
	ContextUserID  = "userID"
	ContextEmail   = "email"
	ContextBranch  = "branch"
	ContextIsAdmin = "isAdmin"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService   *auth.JWTService
	authzService *appauth.AuthorizationService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, authzService *appauth.AuthorizationService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:   jwtService,
		authzService: authzService,
	}
}

// tokenFromRequest reads the bearer token from the Authorization header, or
// from the token query parameter for links opened outside an API client.
func tokenFromRequest(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		header = c.Query("token")
	}
	return auth.ExtractBearerToken(header)
}

func (m *AuthMiddleware) setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextBranch, claims.Branch)
	c.Set(ContextIsAdmin, claims.IsAdmin)
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			errorDetail = errorDetail.WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			}

			errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed")
			errorDetail = errorDetail.WithDetails(errorDetails)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		m.setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the caller's claims when a valid token is present and
// lets anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, err := tokenFromRequest(c); err == nil {
			if claims, err := m.jwtService.ValidateAndExtractClaims(tokenString); err == nil {
				m.setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// AdminRequired rejects callers whose profile does not carry the admin flag.
// Must run after JWTAuth. The token claim is not trusted for this.
func (m *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		if err := m.authzService.ValidateAdmin(c.Request.Context(), userID); err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user's ID from the context
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// IsAdminClaim reports the admin hint carried by the caller's token
func IsAdminClaim(c *gin.Context) bool {
	return c.GetBool(ContextIsAdmin)
}
