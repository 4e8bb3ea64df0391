package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/karales/social-network-api/internal/model"
)

// RequireRole returns a middleware that enforces the role hierarchy on a
// route: the caller's role value must be numerically at most the required
// one (Admin=1 outranks Moderator=2 outranks User=3). It assumes JWTAuth
// has already stored the caller's role in the context; a missing or
// insufficient role aborts the request with 403 Forbidden.
func RequireRole(required model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(model.Role)
			if !ok || !role.Allows(required) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
