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

// ReferenceController handles reference book endpoints
type ReferenceController struct {
	referenceService services.ReferenceService
	viewService      services.ViewService
	scope            branchScope
	logger           zerolog.Logger
}

// NewReferenceController creates a new ReferenceController
func NewReferenceController(referenceService services.ReferenceService, viewService services.ViewService, authzService *appauth.AuthorizationService, logger zerolog.Logger) *ReferenceController {
	return &ReferenceController{
		referenceService: referenceService,
		viewService:      viewService,
		scope:            branchScope{authzService: authzService},
		logger:           logger,
	}
}

// ListReferences godoc
// @Summary List reference books
// @Description Lists reference books of the caller's branch for a semester, newest first
// @Tags references
// @Produce json
// @Security BearerAuth
// @Param semester query int true "Semester (1-8)"
// @Param subjectId query string false "Filter by subject"
// @Param branch query string false "Branch, admins only"
// @Success 200 {object} dto.APIResponse{data=[]dto.ReferenceResponse} "Reference books"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /references [get]
func (c *ReferenceController) ListReferences(ctx *gin.Context) {
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

	items, err := c.referenceService.ListReferences(ctx.Request.Context(), models.ContentFilter{
		Branch:    branch,
		Semester:  semester,
		SubjectID: ctx.Query("subjectId"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items))
}

// SemesterView godoc
// @Summary Subjects of a semester
// @Description Lists the subjects of a semester with how many reference books each has
// @Tags references
// @Produce json
// @Security BearerAuth
// @Param semester path int true "Semester (1-8)"
// @Success 200 {object} dto.APIResponse{data=dto.SemesterView} "Subjects"
// @Failure 400 {object} dto.ErrorResponse "Invalid semester"
// @Router /references/semester/{semester} [get]
func (c *ReferenceController) SemesterView(ctx *gin.Context) {
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

	view, err := c.viewService.SemesterView(ctx.Request.Context(), models.ContentReference, branch, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(view))
}

// SubjectView godoc
// @Summary Reference books of a subject
// @Tags references
// @Produce json
// @Security BearerAuth
// @Param semester path int true "Semester (1-8)"
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} dto.APIResponse{data=dto.ReferenceSubjectView} "Reference books"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /references/semester/{semester}/subject/{subjectId} [get]
func (c *ReferenceController) SubjectView(ctx *gin.Context) {
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

	view, err := c.viewService.ReferenceSubjectView(ctx.Request.Context(), branch, semester, ctx.Param("subjectId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(view))
}

// GetReference godoc
// @Summary Get reference book by ID
// @Tags references
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reference book ID"
// @Success 200 {object} dto.APIResponse{data=dto.ReferenceResponse} "Reference book"
// @Failure 404 {object} dto.ErrorResponse "Reference book not found"
// @Router /references/{id} [get]
func (c *ReferenceController) GetReference(ctx *gin.Context) {
	id, err := parseID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	book, err := c.referenceService.GetReference(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(book))
}

// DownloadReference godoc
// @Summary Download link for a reference book
// @Tags references
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reference book ID"
// @Success 200 {object} dto.APIResponse{data=dto.DownloadResponse} "Signed link"
// @Failure 404 {object} dto.ErrorResponse "Reference book or file not found"
// @Router /references/{id}/download [get]
func (c *ReferenceController) DownloadReference(ctx *gin.Context) {
	id, err := parseID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	link, err := c.referenceService.DownloadReference(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(link))
}

// CreateReference godoc
// @Summary Upload a reference book
// @Description Uploads a textbook for a subject. Admins only.
// @Tags references
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param author formData string true "Author"
// @Param branch formData string true "Branch"
// @Param semester formData int true "Semester (1-8)"
// @Param subjectId formData string true "Subject ID"
// @Param file formData file true "PDF, DOC or DOCX, up to 50 MB"
// @Success 201 {object} dto.APIResponse{data=dto.ReferenceResponse} "Reference book created"
// @Failure 400 {object} dto.ErrorResponse "Invalid form or file"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /references [post]
func (c *ReferenceController) CreateReference(ctx *gin.Context) {
	userID, err := requireUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var form dto.ReferenceForm
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

	book, err := c.referenceService.CreateReference(ctx.Request.Context(), userID, &form, file)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Msg("Reference upload failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(book))
}

// UpdateReference godoc
// @Summary Update a reference book
// @Description Changes title or author, and replaces the file when one is sent. Admins only.
// @Tags references
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reference book ID"
// @Param title formData string false "Title"
// @Param author formData string false "Author"
// @Param file formData file false "Replacement file"
// @Success 200 {object} dto.APIResponse{data=dto.ReferenceResponse} "Reference book updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid form or file"
// @Failure 404 {object} dto.ErrorResponse "Reference book not found"
// @Router /references/{id} [put]
func (c *ReferenceController) UpdateReference(ctx *gin.Context) {
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

	var form dto.ReferenceUpdateForm
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

	book, err := c.referenceService.UpdateReference(ctx.Request.Context(), userID, id, &form, file)
	if err != nil {
		c.logger.Warn().Err(err).Str("referenceID", id.String()).Msg("Reference update failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(book))
}

// DeleteReference godoc
// @Summary Delete a reference book
// @Tags references
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reference book ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Reference book deleted"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Reference book not found"
// @Router /references/{id} [delete]
func (c *ReferenceController) DeleteReference(ctx *gin.Context) {
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

	if err := c.referenceService.DeleteReference(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Reference book deleted"}))
}
