package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/services"
	"github.com/yigit/nhance/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates a student account with a fixed branch. Unless verification is disabled the user must confirm their email before logging in.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterResponse} "Account created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	registerResponse, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("userID", registerResponse.UserID).
		Bool("needsVerification", registerResponse.NeedsVerification).
		Msg("User registered")

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(registerResponse))
}

// Login handles user login
// @Summary User login
// @Description Authenticates a user and returns an access token, a refresh token and the user's profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Email not verified"
// @Failure 409 {object} dto.ErrorResponse "Account has no profile"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	req, ok := middleware.ValidatedBody[dto.LoginRequest](ctx)
	if !ok {
		var body dto.LoginRequest
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			return
		}
		req = &body
	}

	authResponse, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", authResponse.User.ID).Msg("User logged in successfully")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(authResponse))
}

// RefreshToken handles refresh token request
// @Summary Refresh access token
// @Description Rotates a refresh token: the presented token is revoked and a new pair is issued
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Token refreshed successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid refresh token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	authResponse, err := c.authService.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Refresh token failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(authResponse))
}

// Logout revokes a refresh token
// @Summary Log out
// @Description Revokes the given refresh token. Unknown tokens are ignored.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Logged out"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), req.RefreshToken); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(&dto.SessionResponse{State: dto.SessionAnonymous}))
}

// VerifyEmail handles email verification
// @Summary Verify email address
// @Description Verifies a user's email address using the token from the verification email
// @Tags auth
// @Produce json
// @Param token query string true "Verification token sent to user's email"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Email verified successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid, expired or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/verify-email [get]
func (c *AuthController) VerifyEmail(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Missing verification token").WithField("token")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	user, err := c.authService.VerifyEmail(ctx.Request.Context(), token)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Email verification failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", user.ID).Msg("Email verified successfully")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user))
}

// ResendVerificationEmail handles resending verification email
// @Summary Resend verification email
// @Description Sends a fresh verification email. Unknown addresses get the same answer as known ones.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResendVerificationRequest true "Email address"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Verification email sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid or missing email"
// @Failure 409 {object} dto.ErrorResponse "Email already verified"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/resend-verification [post]
func (c *AuthController) ResendVerificationEmail(ctx *gin.Context) {
	var req dto.ResendVerificationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.authService.ResendVerificationEmail(ctx.Request.Context(), req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{
		Message: "If the address is registered, a verification email is on its way.",
	}))
}

// Session reports the caller's session
// @Summary Current session
// @Description Returns the signed-in user, or the anonymous state when no valid token is presented
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Session state"
// @Router /auth/session [get]
func (c *AuthController) Session(ctx *gin.Context) {
	userID, _ := middleware.GetUserID(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.authService.Session(ctx.Request.Context(), userID)))
}
