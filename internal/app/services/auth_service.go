package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/pkg/apperrors"
	"github.com/yigit/nhance/internal/pkg/auth"
	"github.com/yigit/nhance/internal/pkg/email"
	"github.com/yigit/nhance/internal/pkg/validation"
)

// AuthConfig tunes registration
type AuthConfig struct {
	RequireEmailVerification bool
	VerificationTokenTTL     time.Duration
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo         repositories.IUserRepository
	tokenRepo        repositories.ITokenRepository
	verificationRepo repositories.IVerificationTokenRepository
	emailService     email.EmailService
	jwtService       *auth.JWTService
	config           AuthConfig
	logger           zerolog.Logger
	now              func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	verificationRepo repositories.IVerificationTokenRepository,
	emailService email.EmailService,
	jwtService *auth.JWTService,
	config AuthConfig,
	logger zerolog.Logger,
) *AuthService {
	if config.VerificationTokenTTL <= 0 {
		config.VerificationTokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		verificationRepo: verificationRepo,
		emailService:     emailService,
		jwtService:       jwtService,
		config:           config,
		logger:           logger.With().Str("service", "auth").Logger(),
		now:              time.Now,
	}
}

// validateEmail checks the address shape shared with the client
func (s *AuthService) validateEmail(address string) error {
	if strings.TrimSpace(address) == "" {
		return apperrors.NewValidationError("email", "Please enter your email address.")
	}
	if !validation.IsValidEmail(address) {
		return apperrors.NewValidationError("email", "Please enter a valid email address.")
	}
	return nil
}

// validateUserID validates a user ID
func (s *AuthService) validateUserID(userID int64) error {
	if userID <= 0 {
		return apperrors.ErrUnauthenticated
	}
	return nil
}

func (s *AuthService) validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidationError("name", "Please enter your name.")
	}
	if !validation.NewStringValidation(name).WithMaxLength(validation.NameMaxLength).Validate() {
		return "", apperrors.NewValidationError("name", fmt.Sprintf("Name must be at most %d characters.", validation.NameMaxLength))
	}
	return name, nil
}

// Register creates an account and its profile. With verification enabled no
// session is issued; the user must follow the emailed link first.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	name, err := s.validateName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.validateEmail(req.Email); err != nil {
		return nil, err
	}
	if len(req.Password) < validation.PasswordMinLength {
		return nil, apperrors.NewValidationError("password", fmt.Sprintf("Password must be at least %d characters.", validation.PasswordMinLength))
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		return nil, apperrors.NewValidationError("password", fmt.Sprintf("Password must be at most %d bytes.", auth.MaxPasswordBytes))
	}
	branch, ok := catalog.ParseBranch(req.Branch)
	if !ok {
		return nil, apperrors.NewValidationError("branch", "Please select a valid branch.")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Password:      hashedPassword,
		EmailVerified: !s.config.RequireEmailVerification,
	}
	profile := &models.Profile{Name: name, Branch: branch}

	userID, err := s.userRepo.CreateAccount(ctx, user, profile)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("account creation error: %w", err)
	}
	user.ID, profile.UserID = userID, userID

	s.logger.Info().Int64("userID", userID).Str("branch", branch.String()).Msg("Account registered")

	if !s.config.RequireEmailVerification {
		authResp, err := s.issueSession(ctx, &models.Account{User: *user, Profile: *profile})
		if err != nil {
			return nil, err
		}
		return &dto.RegisterResponse{
			Success: true,
			UserID:  userID,
			Token:   &authResp.Token,
			User:    authResp.User,
		}, nil
	}

	s.sendVerification(ctx, user, name)
	return &dto.RegisterResponse{
		Success:           true,
		NeedsVerification: true,
		UserID:            userID,
		Message:           "Check your email to verify your account before logging in.",
	}, nil
}

// sendVerification stores a fresh token and mails it. Failures are logged;
// the user can ask for another email.
func (s *AuthService) sendVerification(ctx context.Context, user *models.User, name string) {
	token, err := email.GenerateVerificationToken()
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate verification token")
		return
	}
	if err := s.verificationRepo.CreateToken(ctx, user.ID, token, s.now().Add(s.config.VerificationTokenTTL)); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to store verification token")
		return
	}
	if err := s.emailService.SendVerificationEmail(ctx, user.Email, name, token); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to send verification email")
	}
}

// Login authenticates a user
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := s.validateEmail(req.Email); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, apperrors.NewValidationError("password", "Please enter your password.")
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			auth.SpendCompare(req.Password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	profile, err := s.userRepo.GetProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrProfileNotFound) {
			s.logger.Error().Int64("userID", user.ID).Str("email", user.Email).Msg("Orphaned account: credentials exist without a profile")
		}
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	}

	return s.issueSession(ctx, &models.Account{User: *user, Profile: *profile})
}

// RefreshToken rotates a refresh token: the old one is revoked and a new pair issued
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, _, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	account, err := s.loadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.issueSession(ctx, account)
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperrors.ErrTokenInvalid
	}
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		return err
	}
	return nil
}

// VerifyEmail consumes a verification token and marks the address verified
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*dto.UserResponse, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.ErrInvalidEmailToken
	}

	userID, expiry, err := s.verificationRepo.GetTokenInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	if expiry.Before(s.now()) {
		if err := s.verificationRepo.DeleteToken(ctx, token); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to delete expired verification token")
		}
		return nil, apperrors.ErrInvalidEmailToken
	}

	account, err := s.loadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !account.User.EmailVerified {
		if err := s.userRepo.MarkEmailVerified(ctx, userID); err != nil {
			return nil, err
		}
		account.User.EmailVerified = true
		if err := s.emailService.SendWelcomeEmail(ctx, account.User.Email, account.Profile.Name); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to send welcome email")
		}
	}

	if err := s.verificationRepo.DeleteTokensByUserID(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to delete verification tokens")
	}

	s.logger.Info().Int64("userID", userID).Msg("Email verified")
	return dto.NewUserResponse(&account.User, &account.Profile), nil
}

// ResendVerificationEmail issues a new verification token. An unknown address
// gets the same answer as a known one.
func (s *AuthService) ResendVerificationEmail(ctx context.Context, address string) error {
	if err := s.validateEmail(address); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, address)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	name := ""
	if profile, err := s.userRepo.GetProfile(ctx, user.ID); err == nil {
		name = profile.Name
	}

	if err := s.verificationRepo.DeleteTokensByUserID(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to clear old verification tokens")
	}
	s.sendVerification(ctx, user, name)
	return nil
}

// GetProfile retrieves the caller's account
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	if err := s.validateUserID(userID); err != nil {
		return nil, err
	}
	account, err := s.loadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(&account.User, &account.Profile), nil
}

// UpdateProfile changes the display name. Branch is fixed at registration.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := s.validateUserID(userID); err != nil {
		return nil, err
	}
	name, err := s.validateName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfileName(ctx, userID, name); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// Session reports the state of the caller. Any failure to load the account
// yields an anonymous session.
func (s *AuthService) Session(ctx context.Context, userID int64) *dto.SessionResponse {
	if userID <= 0 {
		return &dto.SessionResponse{State: dto.SessionAnonymous}
	}
	account, err := s.loadAccount(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Session lookup failed, reporting anonymous")
		return &dto.SessionResponse{State: dto.SessionAnonymous}
	}
	return &dto.SessionResponse{
		State: dto.SessionAuthenticated,
		User:  dto.NewUserResponse(&account.User, &account.Profile),
	}
}

// SetAdmin grants or revokes the admin flag. Operator use only.
func (s *AuthService) SetAdmin(ctx context.Context, address string, isAdmin bool) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, address)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetAdmin(ctx, user.ID, isAdmin); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Bool("isAdmin", isAdmin).Msg("Admin flag changed")
	return s.GetProfile(ctx, user.ID)
}

// CleanupExpiredTokens removes expired refresh and verification tokens
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	refresh, err := s.tokenRepo.CleanupExpiredTokens(ctx)
	if err != nil {
		return 0, err
	}
	verification, err := s.verificationRepo.DeleteExpiredTokens(ctx)
	if err != nil {
		return refresh, err
	}
	return refresh + verification, nil
}

func (s *AuthService) loadAccount(ctx context.Context, userID int64) (*models.Account, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.Account{User: *user, Profile: *profile}, nil
}

// issueSession creates a token pair and stores the refresh token
func (s *AuthService) issueSession(ctx context.Context, account *models.Account) (*dto.AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(account)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, account.User.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             pair.ExpiresIn,
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: pair.RefreshExpiresIn,
		},
		User: dto.NewUserResponse(&account.User, &account.Profile),
	}, nil
}
