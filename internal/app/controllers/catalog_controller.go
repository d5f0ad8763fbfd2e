package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/nhance/internal/app/catalog"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/middleware"
)

// CatalogController exposes the static curriculum
type CatalogController struct{}

// NewCatalogController creates a new CatalogController
func NewCatalogController() *CatalogController {
	return &CatalogController{}
}

// GetBranches godoc
// @Summary List branches
// @Description Returns the academic branches in display order
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]string} "Branches"
// @Router /catalog/branches [get]
func (c *CatalogController) GetBranches(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(catalog.Branches()))
}

// GetSemesters godoc
// @Summary List semesters
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]int} "Semesters 1 to 8"
// @Router /catalog/semesters [get]
func (c *CatalogController) GetSemesters(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(catalog.AllSemesters()))
}

// GetModules godoc
// @Summary List modules
// @Description Returns the fixed module slots every subject has
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]catalog.Module} "Modules"
// @Router /catalog/modules [get]
func (c *CatalogController) GetModules(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(catalog.AllModules()))
}

// GetSubjects godoc
// @Summary List subjects
// @Description Returns the subjects taught in a branch and semester
// @Tags catalog
// @Produce json
// @Param branch path string true "Branch (CSE, EEE, Mechanical, ECE, Civil)"
// @Param semester path int true "Semester (1-8)"
// @Success 200 {object} dto.APIResponse{data=dto.SubjectListResponse} "Subjects"
// @Failure 400 {object} dto.ErrorResponse "Invalid branch or semester"
// @Router /catalog/branches/{branch}/semesters/{semester}/subjects [get]
func (c *CatalogController) GetSubjects(ctx *gin.Context) {
	branch, err := parseBranch(ctx.Param("branch"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	semester, err := parseSemester(ctx.Param("semester"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SubjectListResponse{
		Branch:   branch,
		Semester: semester,
		Subjects: catalog.SubjectsFor(branch, semester),
	}))
}
