package router

import (
	"github.com/labstack/echo/v4"

	"github.com/karales/social-network-api/internal/handler"
	"github.com/karales/social-network-api/internal/middleware"
	"github.com/karales/social-network-api/internal/model"
)

// RegisterPosts registers post CRUD, the like toggle and the feed under
// /api. The global post listing is the same for every caller and is
// cached; the feed is per-user and therefore never cached.
func RegisterPosts(e *echo.Echo, h *handler.PostHandler, auth, cache echo.MiddlewareFunc) {
	g := e.Group("/api", auth, middleware.RequireRole(model.RoleUser))
	g.POST("/posts", h.Create)
	g.GET("/posts", h.List, cache)
	g.GET("/feed", h.Feed)
	g.GET("/posts/:id", h.Get)
	g.PATCH("/posts/:id", h.Update)
	g.DELETE("/posts/:id", h.Delete)
	g.POST("/posts/:id/like", h.Like)
}
