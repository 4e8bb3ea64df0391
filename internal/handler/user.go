package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/karales/social-network-api/internal/model"
	"github.com/karales/social-network-api/internal/queue"
	"github.com/karales/social-network-api/internal/repository"
	"github.com/karales/social-network-api/internal/service/queue_publisher"
)

// UserHandler serves user listing, lookup and the follow toggle. Publish
// is the engagement-event sink; it defaults to the RabbitMQ publisher and
// is overridden in tests.
type UserHandler struct {
	Users   *repository.UserRepo
	Follows toggler
	Publish func(ctx context.Context, ev queue.EngagementEvent) error
}

func NewUserHandler(u *repository.UserRepo, f *repository.FollowRepo) *UserHandler {
	return &UserHandler{Users: u, Follows: f, Publish: queue_publisher.PublishEngagement}
}

// List handles GET /api/users. Password hashes never leave the struct's
// json:"-" field.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /api/users/:id. The router cannot distinguish an id from
// a username in the same path segment, so a numeric parameter is treated
// as an id and anything else as a username.
func (h *UserHandler) Get(c echo.Context) error {
	param := c.Param("id")
	ctx := c.Request().Context()

	var (
		u   model.User
		err error
	)
	if id, perr := strconv.ParseUint(param, 10, 64); perr == nil {
		u, err = h.Users.GetByID(ctx, id)
	} else {
		u, err = h.Users.GetByUsername(ctx, param)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, u)
}

// Follow handles POST /api/users/:id/follow, the follow/unfollow toggle.
// 201 means the caller now follows the target, 200 means the existing
// follow was removed. A concurrent toggle losing the insert race gets 409
// and may simply retry.
func (h *UserHandler) Follow(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	outcome, err := h.Follows.Toggle(c.Request().Context(), targetID, uid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSelfAction):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot follow yourself"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "concurrent update, retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "follow failed"})
	}

	h.publishFollow(uid, targetID, outcome)

	status := http.StatusOK
	if outcome == repository.ToggleCreated {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"status": outcome.String()})
}

// publishFollow emits the engagement event off the request path; a broker
// outage never fails the toggle that already committed.
func (h *UserHandler) publishFollow(actorID, targetID uint64, outcome repository.ToggleOutcome) {
	if h.Publish == nil {
		return
	}
	ev := queue.EngagementEvent{
		Kind:       queue.KindUserFollowed,
		ActorID:    actorID,
		SubjectID:  targetID,
		Outcome:    outcome.String(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Publish(ctx, ev)
	}()
}
