package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/nhance/internal/app/auth"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/services"
	"github.com/yigit/nhance/internal/middleware"
)

// QuizController serves the quiz pages, which are placeholders for now
type QuizController struct {
	viewService services.ViewService
	scope       branchScope
}

// NewQuizController creates a new QuizController
func NewQuizController(viewService services.ViewService, authzService *appauth.AuthorizationService) *QuizController {
	return &QuizController{
		viewService: viewService,
		scope:       branchScope{authzService: authzService},
	}
}

// QuizView godoc
// @Summary Quiz pages
// @Description Lists subjects, then modules, then shows the placeholder for a module quiz
// @Tags quiz
// @Produce json
// @Security BearerAuth
// @Param semester path int true "Semester (1-8)"
// @Param subjectId path string false "Subject ID"
// @Param moduleId path string false "Module ID"
// @Success 200 {object} dto.APIResponse{data=dto.QuizPlaceholderResponse} "Quiz placeholder"
// @Failure 400 {object} dto.ErrorResponse "Invalid semester"
// @Failure 404 {object} dto.ErrorResponse "Subject or module not found"
// @Router /quiz/semester/{semester} [get]
// @Router /quiz/semester/{semester}/subject/{subjectId} [get]
// @Router /quiz/semester/{semester}/subject/{subjectId}/module/{moduleId} [get]
func (c *QuizController) QuizView(ctx *gin.Context) {
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

	view, err := c.viewService.QuizView(branch, semester, ctx.Param("subjectId"), ctx.Param("moduleId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(view))
}
