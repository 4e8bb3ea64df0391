package router

import (
	"github.com/labstack/echo/v4"

	"github.com/karales/social-network-api/internal/handler"
	"github.com/karales/social-network-api/internal/middleware"
	"github.com/karales/social-network-api/internal/model"
)

// RegisterUsers registers user lookup and the follow toggle under /api.
// All routes require a valid token; any role may call them. The user
// listing is identical for every caller, so it goes through the shared
// response cache.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, auth, cache echo.MiddlewareFunc) {
	g := e.Group("/api", auth, middleware.RequireRole(model.RoleUser))
	g.GET("/users", h.List, cache)
	g.GET("/users/:id", h.Get)
	g.POST("/users/:id/follow", h.Follow)
}
