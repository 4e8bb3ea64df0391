package middleware // middleware contains reusable HTTP middleware functions

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/karales/social-network-api/internal/model"
)

// Context keys set by JWTAuth for downstream middleware and handlers.
const (
	CtxUserID = "user_id" // uint64 subject of the validated token
	CtxRole   = "role"    // model.Role of the caller
	CtxToken  = "token"   // raw bearer token string
)

// SessionChecker is the slice of the session store the auth gate needs:
// whether a live session row exists for a token. *repository.SessionRepo
// satisfies it.
type SessionChecker interface {
	Exists(ctx context.Context, token string) (bool, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the caller's identity into the request context. A token is
// accepted only when its HMAC signature and exp claim verify AND a live
// session row still exists for it, so logout revokes tokens immediately.
// Protected handlers read the identity via c.Get(CtxUserID) / c.Get(CtxRole).
func JWTAuth(secret string, sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// jwt.Parse verifies the signature and the exp claim. The
			// callback pins the algorithm to HMAC so a token signed with
			// a different method is rejected outright.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			sub, ok := claims["sub"].(float64) // JSON numbers decode as float64
			if !ok || sub <= 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			roleName, _ := claims["role"].(string)
			role, err := model.RoleFromName(roleName)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// Signature alone is not enough: the session row must still be
			// live, otherwise the token was logged out or swept.
			live, err := sessions.Exists(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
			}
			if !live {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
			}

			c.Set(CtxUserID, uint64(sub))
			c.Set(CtxRole, role)
			c.Set(CtxToken, raw)
			return next(c)
		}
	}
}
