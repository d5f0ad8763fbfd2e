package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/nhance/internal/app/models/dto"
	"github.com/yigit/nhance/internal/app/navigation"
	"github.com/yigit/nhance/internal/app/session"
	"github.com/yigit/nhance/internal/middleware"
)

// SessionSource reports the session of a user ID; zero means anonymous
type SessionSource interface {
	Session(ctx context.Context, userID int64) *dto.SessionResponse
}

// NavigationController tells clients how a page path is handled
type NavigationController struct {
	sessions SessionSource
	gate     navigation.Gate
}

// NewNavigationController creates a new NavigationController
func NewNavigationController(sessions SessionSource) *NavigationController {
	return &NavigationController{sessions: sessions}
}

func (c *NavigationController) snapshot(ctx *gin.Context) session.Snapshot {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		return session.Snapshot{State: session.Anonymous}
	}
	resp := c.sessions.Session(ctx.Request.Context(), userID)
	if resp.State != dto.SessionAuthenticated || resp.User == nil {
		return session.Snapshot{State: session.Anonymous}
	}
	return session.Snapshot{
		State: session.Authenticated,
		User: &session.User{
			ID:      resp.User.ID,
			Name:    resp.User.Name,
			Email:   resp.User.Email,
			Branch:  resp.User.Branch,
			IsAdmin: resp.User.IsAdmin,
		},
	}
}

// ListRoutes godoc
// @Summary List page routes
// @Description Returns the page table in match order
// @Tags navigation
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]navigation.Route} "Routes"
// @Router /routes [get]
func (c *NavigationController) ListRoutes(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(navigation.Routes()))
}

// Resolve godoc
// @Summary Resolve a page path
// @Description Matches path against the page table and applies the access rules for the caller
// @Tags navigation
// @Produce json
// @Security BearerAuth
// @Param path query string true "Page path, e.g. /materials/semester/2"
// @Success 200 {object} dto.APIResponse{data=dto.RouteResolution} "Resolution"
// @Failure 400 {object} dto.ErrorResponse "Missing path"
// @Router /routes/resolve [get]
func (c *NavigationController) Resolve(ctx *gin.Context) {
	p := ctx.Query("path")
	if p == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Missing path").WithField("path")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	match, decision := c.gate.Navigate(c.snapshot(ctx), p)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.RouteResolution{
		Path:          p,
		Route:         match.Route.Name,
		Params:        match.Params,
		RequiresAuth:  match.Route.RequiresAuth,
		RequiresAdmin: match.Route.AdminOnly,
		Action:        string(decision.Action),
		Location:      decision.Location,
	}))
}
