package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/karales/social-network-api/internal/model"
	"github.com/karales/social-network-api/internal/queue"
	"github.com/karales/social-network-api/internal/repository"
	"github.com/karales/social-network-api/internal/service/queue_publisher"
)

// PostHandler serves post CRUD, the feed and the like toggle.
type PostHandler struct {
	Posts   *repository.PostRepo
	Likes   toggler
	Publish func(ctx context.Context, ev queue.EngagementEvent) error
}

func NewPostHandler(p *repository.PostRepo, l *repository.LikeRepo) *PostHandler {
	return &PostHandler{Posts: p, Likes: l, Publish: queue_publisher.PublishEngagement}
}

type postCreateReq struct {
	RelatedToPost *uint64 `json:"related_to_post,omitempty"`
	// UserID is accepted for wire compatibility with older clients but the
	// post owner is always the token subject.
	UserID uint64 `json:"user_id,omitempty"`
	Text   string `json:"text"`
}

type postUpdateReq struct {
	Text string `json:"text"`
}

// canModify reports whether the caller may edit or delete a post: its
// owner always can, and moderators and admins override ownership.
func canModify(p model.Post, uid uint64, role model.Role) bool {
	return p.UserID == uid || role.Allows(model.RoleModerator)
}

// Create handles POST /api/posts.
func (h *PostHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req postCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text required"})
	}

	post, err := h.Posts.Create(c.Request().Context(), uid, req.RelatedToPost, req.Text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create post failed"})
	}
	h.publishEngagement(queue.KindPostCreated, uid, post.ID, "")
	return c.JSON(http.StatusCreated, post)
}

// List handles GET /api/posts.
func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.Posts.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, posts)
}

// Feed handles GET /api/feed: posts authored by users the caller follows,
// newest first.
func (h *PostHandler) Feed(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	posts, err := h.Posts.ListFeed(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, posts)
}

// Get handles GET /api/posts/:id.
func (h *PostHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}
	post, err := h.Posts.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, post)
}

// Update handles PATCH /api/posts/:id. Only the owner, a moderator or an
// admin may edit.
func (h *PostHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}
	var req postUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text required"})
	}

	ctx := c.Request().Context()
	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canModify(post, uid, getRole(c)) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	updated, err := h.Posts.UpdateText(ctx, id, req.Text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update post failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/posts/:id with the same ownership rule as
// Update.
func (h *PostHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	ctx := c.Request().Context()
	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canModify(post, uid, getRole(c)) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete post failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}

// Like handles POST /api/posts/:id/like, the like/unlike toggle. 201 means
// the post is now liked, 200 means the like was removed.
func (h *PostHandler) Like(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	outcome, err := h.Likes.Toggle(c.Request().Context(), id, uid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "concurrent update, retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "like failed"})
	}

	h.publishEngagement(queue.KindPostLiked, uid, id, outcome.String())

	status := http.StatusOK
	if outcome == repository.ToggleCreated {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"status": outcome.String()})
}

// publishEngagement emits an event off the request path; broker failures
// never fail the write that already committed.
func (h *PostHandler) publishEngagement(kind string, actorID, subjectID uint64, outcome string) {
	if h.Publish == nil {
		return
	}
	ev := queue.EngagementEvent{
		Kind:       kind,
		ActorID:    actorID,
		SubjectID:  subjectID,
		Outcome:    outcome,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Publish(ctx, ev)
	}()
}
