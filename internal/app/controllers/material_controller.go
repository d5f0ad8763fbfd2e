package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/nhance/internal/app/auth"
	"github.com/yigit/nhance/internal/app/models"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/services"
	"github.com/yigit/nhance/internal/middleware"
)

// MaterialController handles study material endpoints
type MaterialController struct {
	materialService services.MaterialService
	viewService     services.ViewService
	scope           branchScope
	logger          zerolog.Logger
}

// NewMaterialController creates a new MaterialController
func NewMaterialController(materialService services.MaterialService, viewService services.ViewService, authzService *appauth.AuthorizationService, logger zerolog.Logger) *MaterialController {
	return &MaterialController{
		materialService: materialService,
		viewService:     viewService,
		scope:           branchScope{authzService: authzService},
		logger:          logger,
	}
}

// ListMaterials godoc
// @Summary List materials
// @Description Lists materials of the caller's branch for a semester, newest first. Admins may pass another branch.
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param semester query int true "Semester (1-8)"
// @Param subjectId query string false "Filter by subject"
// @Param moduleId query string false "Filter by module"
// @Param branch query string false "Branch, admins only"
// @Success 200 {object} dto.APIResponse{data=[]dto.MaterialResponse} "Materials"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /materials [get]
func (c *MaterialController) ListMaterials(ctx *gin.Context) {
	branch, err := c.scope.resolve(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	semester, err := parseSemester(ctx.Query("semester"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items, err := c.materialService.ListMaterials(ctx.Request.Context(), models.ContentFilter{
		Branch:    branch,
		Semester:  semester,
		SubjectID: ctx.Query("subjectId"),
		ModuleID:  ctx.Query("moduleId"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items))
}

// SemesterView godoc
// @Summary Subjects of a semester
// @Description Lists the subjects of a semester with how many materials each has
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param semester path int true "Semester (1-8)"
// @Param branch query string false "Branch, admins only"
// @Success 200 {object} dto.APIResponse{data=dto.SemesterView} "Subjects"
// @Failure 400 {object} dto.ErrorResponse "Invalid semester"
// @Router /materials/semester/{semester} [get]
func (c *MaterialController) SemesterView(ctx *gin.Context) {
	branch, err := c.scope.resolve(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	semester, err := parseSemester(ctx.Param("semester"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	view, err := c.viewService.SemesterView(ctx.Request.Context(), models.ContentMaterial, branch, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(view))
}

// SubjectView godoc
// @Summary Materials of a subject
// @Description Returns one slot per module; the newest upload fills the slot
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param semester path int true "Semester (1-8)"
// @Param subjectId path string true "Subject ID"
// @Param branch query string false "Branch, admins only"
// @Success 200 {object} dto.APIResponse{data=dto.MaterialSubjectView} "Module slots"
// @Failure 400 {object} dto.ErrorResponse "Invalid semester"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /materials/semester/{semester}/subject/{subjectId} [get]
func (c *MaterialController) SubjectView(ctx *gin.Context) {
	branch, err := c.scope.resolve(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	semester, err := parseSemester(ctx.Param("semester"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	view, err := c.viewService.MaterialSubjectView(ctx.Request.Context(), branch, semester, ctx.Param("subjectId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(view))
}

// GetMaterial godoc
// @Summary Get material by ID
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 200 {object} dto.APIResponse{data=dto.MaterialResponse} "Material"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Router /materials/{id} [get]
func (c *MaterialController) GetMaterial(ctx *gin.Context) {
	id, err := parseID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	material, err := c.materialService.GetMaterial(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(material))
}

// DownloadMaterial godoc
// @Summary Download link for a material
// @Description Returns a signed URL for the material's file. The link expires.
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 200 {object} dto.APIResponse{data=dto.DownloadResponse} "Signed link"
// @Failure 404 {object} dto.ErrorResponse "Material or file not found"
// @Failure 502 {object} dto.ErrorResponse "File storage unavailable"
// @Router /materials/{id}/download [get]
func (c *MaterialController) DownloadMaterial(ctx *gin.Context) {
	id, err := parseID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	link, err := c.materialService.DownloadMaterial(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(link))
}

// CreateMaterial godoc
// @Summary Upload a material
// @Description Uploads a document for one module of a subject. Admins only.
// @Tags materials
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param branch formData string true "Branch"
// @Param semester formData int true "Semester (1-8)"
// @Param subjectId formData string true "Subject ID"
// @Param moduleId formData string true "Module ID"
// @Param file formData file true "PDF, DOC, DOCX, PPT or PPTX, up to 50 MB"
// @Success 201 {object} dto.APIResponse{data=dto.MaterialResponse} "Material created"
// @Failure 400 {object} dto.ErrorResponse "Invalid form or file"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 502 {object} dto.ErrorResponse "File storage failed"
// @Router /materials [post]
func (c *MaterialController) CreateMaterial(ctx *gin.Context) {
	userID, err := requireUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var form dto.MaterialForm
	if !bindUploadForm(ctx, &form) {
		return
	}

	file, closer, err := uploadedFile(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	material, err := c.materialService.CreateMaterial(ctx.Request.Context(), userID, &form, file)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Msg("Material upload failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(material))
}

// UpdateMaterial godoc
// @Summary Update a material
// @Description Changes title or description, and replaces the file when one is sent. Admins only.
// @Tags materials
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param file formData file false "Replacement file"
// @Success 200 {object} dto.APIResponse{data=dto.MaterialResponse} "Material updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid form or file"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Router /materials/{id} [put]
func (c *MaterialController) UpdateMaterial(ctx *gin.Context) {
	userID, err := requireUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, err := parseID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var form dto.MaterialUpdateForm
	if !bindUploadForm(ctx, &form) {
		return
	}

	file, closer, err := uploadedFile(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	material, err := c.materialService.UpdateMaterial(ctx.Request.Context(), userID, id, &form, file)
	if err != nil {
		c.logger.Warn().Err(err).Str("materialID", id.String()).Msg("Material update failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(material))
}

// DeleteMaterial godoc
// @Summary Delete a material
// @Description Removes the file and the record. Admins only.
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Material deleted"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Router /materials/{id} [delete]
func (c *MaterialController) DeleteMaterial(ctx *gin.Context) {
	userID, err := requireUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, err := parseID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.materialService.DeleteMaterial(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Material deleted"}))
}
