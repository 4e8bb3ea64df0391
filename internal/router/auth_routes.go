package router

import (
	"github.com/labstack/echo/v4"

	"github.com/karales/social-network-api/internal/handler"
	"github.com/karales/social-network-api/internal/middleware"
	"github.com/karales/social-network-api/internal/model"
)

// RegisterAuth registers the authentication endpoints. Register and login
// are unauthenticated but rate limited (they are the brute-force surface);
// logout and token introspection require a valid bearer token. The auth
// middleware validates both the JWT signature and the live session row.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout, auth, middleware.RequireRole(model.RoleUser))

	e.GET("/api/me", a.Me, auth, middleware.RequireRole(model.RoleUser))
}
