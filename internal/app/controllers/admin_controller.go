package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/services"
	"github.com/yigit/nhance/internal/middleware"
	"github.com/yigit/nhance/internal/pkg/helpers"
)

// AdminController serves the admin dashboard
type AdminController struct {
	adminService services.AdminService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// ListContent godoc
// @Summary List uploaded content
// @Description Pages through all materials or all reference books, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param type query string false "material (default) or reference"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.ContentOverviewItem}} "Content page"
// @Failure 400 {object} dto.ErrorResponse "Unknown content type"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/content [get]
func (c *AdminController) ListContent(ctx *gin.Context) {
	userID, err := requireUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.adminService.ListContent(ctx.Request.Context(), userID, models.ContentKind(ctx.Query("type")), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// ListBlobOperations godoc
// @Summary List blob operations
// @Description Pages through the journal of file replacements and deletions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, done, failed, resolved or unrecoverable"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.BlobOperation}} "Journal page"
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/blob-operations [get]
func (c *AdminController) ListBlobOperations(ctx *gin.Context) {
	userID, err := requireUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.adminService.ListBlobOperations(ctx.Request.Context(), userID, models.BlobOpStatus(ctx.Query("status")), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// Reconcile godoc
// @Summary Reconcile file operations
// @Description Runs one pass over interrupted file replacements and deletions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=services.ReconcileReport} "Pass report"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/reconcile [post]
func (c *AdminController) Reconcile(ctx *gin.Context) {
	userID, err := requireUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	report, err := c.adminService.Reconcile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().
		Int64("userID", userID).
		Int("examined", report.Examined).
		Int("resolved", report.Resolved).
		Msg("Manual reconcile finished")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}
