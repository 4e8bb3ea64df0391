package handler

// Shared helpers for reading the identity that middleware.JWTAuth stored
// in the request context.

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/karales/social-network-api/internal/middleware"
	"github.com/karales/social-network-api/internal/model"
	"github.com/karales/social-network-api/internal/repository"
)

var errNoIdentity = errors.New("no authenticated user in context")

// toggler is the slice of a toggle repository the handlers depend on:
// flip the edge between a subject and the acting user, report which way
// it went. *repository.FollowRepo and *repository.LikeRepo satisfy it.
type toggler interface {
	Toggle(ctx context.Context, subjectID, actorID uint64) (repository.ToggleOutcome, error)
}

// getUserID returns the authenticated caller's user id.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok || id == 0 {
		return 0, errNoIdentity
	}
	return id, nil
}

// getRole returns the caller's role, defaulting to the least privileged
// role when the context value is missing.
func getRole(c echo.Context) model.Role {
	role, ok := c.Get(middleware.CtxRole).(model.Role)
	if !ok {
		return model.RoleUser
	}
	return role
}

// getToken returns the raw bearer token the caller authenticated with.
func getToken(c echo.Context) string {
	tok, _ := c.Get(middleware.CtxToken).(string)
	return tok
}
