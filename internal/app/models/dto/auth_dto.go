package dto

import (
	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/models"
)

// LoginRequest represents login credentials. Email syntax is checked by the
// auth service so the rule matches the client.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"student@nhance.edu"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// RegisterRequest represents a registration request. Branch is matched
// case-insensitively by the auth service.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required" example:"Asha Kumar"`
	Email    string `json:"email" binding:"required" example:"student@nhance.edu"`
	Password string `json:"password" binding:"required,min=6" example:"secret1"`
	Branch   string `json:"branch" binding:"required" example:"CSE"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn" example:"3600"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest carries a refresh token for rotation or logout
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ResendVerificationRequest asks for a fresh verification email
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required" example:"student@nhance.edu"`
}

// UpdateProfileRequest represents profile update data. Branch cannot be changed.
type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required" example:"Asha K."`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID      int64          `json:"id" example:"1"`
	Name    string         `json:"name" example:"Asha Kumar"`
	Email   string         `json:"email" example:"student@nhance.edu"`
	Branch  catalog.Branch `json:"branch" example:"CSE"`
	IsAdmin bool           `json:"isAdmin" example:"false"`
}

// NewUserResponse builds a UserResponse from a credential row and its profile
func NewUserResponse(user *models.User, profile *models.Profile) *UserResponse {
	if user == nil || profile == nil {
		return nil
	}
	return &UserResponse{
		ID:      user.ID,
		Name:    profile.Name,
		Email:   user.Email,
		Branch:  profile.Branch,
		IsAdmin: profile.IsAdmin,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *UserResponse `json:"user"`
}

// RegisterResponse reports the outcome of a registration. When
// NeedsVerification is set no session exists yet.
type RegisterResponse struct {
	Success           bool           `json:"success" example:"true"`
	NeedsVerification bool           `json:"needsVerification" example:"true"`
	UserID            int64          `json:"userId,omitempty" example:"7"`
	Message           string         `json:"message,omitempty"`
	Token             *TokenResponse `json:"token,omitempty"`
	User              *UserResponse  `json:"user,omitempty"`
}

// Session states reported by the session endpoint
const (
	SessionAnonymous     = "anonymous"
	SessionAuthenticated = "authenticated"
)

// SessionResponse describes the caller's session
type SessionResponse struct {
	State string        `json:"state" example:"authenticated"`
	User  *UserResponse `json:"user,omitempty"`
}
