package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/services"
	"github.com/yigit/nhance/internal/middleware"
)

// UserController serves the signed-in user's own profile
type UserController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(authService *services.AuthService, logger zerolog.Logger) *UserController {
	return &UserController{
		authService: authService,
		logger:      logger,
	}
}

// GetProfile godoc
// @Summary Get current user profile
// @Description Returns the profile of the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "Account has no profile"
// @Router /me [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	userID, err := requireUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	profile, err := c.authService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// UpdateProfile godoc
// @Summary Update current user profile
// @Description Changes the display name. Branch and email cannot be changed.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile changes"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /me [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	userID, err := requireUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	profile, err := c.authService.UpdateProfile(ctx.Request.Context(), userID, &req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Msg("Profile update failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}
