package handler

// Handler tests drive the real handlers over httptest requests, backed by
// real repositories on an in-memory SQLite database. The auth middleware
// is covered in its own package; here the identity it would set is placed
// directly into the Echo context.

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/karales/social-network-api/internal/config"
	"github.com/karales/social-network-api/internal/middleware"
	"github.com/karales/social-network-api/internal/model"
	"github.com/karales/social-network-api/internal/repository"
	"github.com/karales/social-network-api/internal/utils"
)

var testSchema = []string{
	`CREATE TABLE role (
		id   INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`INSERT INTO role (id, name) VALUES (1,'admin'), (2,'moderator'), (3,'user')`,
	`CREATE TABLE user (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		followers     INTEGER NOT NULL DEFAULT 0,
		following     INTEGER NOT NULL DEFAULT 0,
		role          INTEGER NOT NULL DEFAULT 3,
		created_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE follower (
		user_id     INTEGER NOT NULL,
		follower_id INTEGER NOT NULL,
		created_at  DATETIME NOT NULL,
		PRIMARY KEY (user_id, follower_id)
	)`,
	`CREATE TABLE post (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		related_to_post INTEGER,
		user_id         INTEGER NOT NULL,
		text            TEXT NOT NULL,
		likes           INTEGER NOT NULL DEFAULT 0,
		comments        INTEGER NOT NULL DEFAULT 0,
		created_at      DATETIME NOT NULL
	)`,
	`CREATE TABLE post_like (
		post_id    INTEGER NOT NULL,
		user_id    INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (post_id, user_id)
	)`,
	`CREATE TABLE session (
		token      TEXT PRIMARY KEY,
		user_id    INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	)`,
}

// testEnv wires real repositories and handlers over one in-memory database.
type testEnv struct {
	db       *sql.DB
	cfg      config.Config
	users    *repository.UserRepo
	follows  *repository.FollowRepo
	posts    *repository.PostRepo
	likes    *repository.LikeRepo
	sessions *repository.SessionRepo
	auth     *AuthHandler
	user     *UserHandler
	post     *PostHandler
	echo     *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range testSchema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create test schema: %v", err)
		}
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		JWTSecret:    "handler-test-secret",
		AccessTTLMin: 15,
		BcryptCost:   bcrypt.MinCost,
	}
	env := &testEnv{
		db:       db,
		cfg:      cfg,
		users:    repository.NewUserRepo(db),
		follows:  repository.NewFollowRepo(db),
		posts:    repository.NewPostRepo(db),
		likes:    repository.NewLikeRepo(db),
		sessions: repository.NewSessionRepo(db),
		echo:     echo.New(),
	}
	env.auth = NewAuthHandler(cfg, env.users, env.sessions)
	env.user = NewUserHandler(env.users, env.follows)
	env.post = NewPostHandler(env.posts, env.likes)
	// events are not part of the request contract; keep tests broker-free
	env.user.Publish = nil
	env.post.Publish = nil
	return env
}

// request builds an Echo context for a handler call. body is raw JSON or
// empty; params are alternating name/value pairs for path parameters.
func (env *testEnv) request(method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

// asUser marks the context as authenticated, the way JWTAuth would.
func asUser(c echo.Context, u model.User) {
	c.Set(middleware.CtxUserID, u.ID)
	c.Set(middleware.CtxRole, u.Role)
}

// registerUser creates an account directly through the repositories with a
// real bcrypt hash, so Login can verify the password.
func (env *testEnv) registerUser(t *testing.T, username, password string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, env.cfg.BcryptCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	id, err := env.users.Create(context.Background(), username, username+"@example.com", hash)
	if err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	u, err := env.users.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load user %q: %v", username, err)
	}
	return u
}

// promote changes a user's role in place for authorization tests.
func (env *testEnv) promote(t *testing.T, u *model.User, role model.Role) {
	t.Helper()
	if _, err := env.db.Exec("UPDATE user SET role=? WHERE id=?", role, u.ID); err != nil {
		t.Fatalf("promote user: %v", err)
	}
	u.Role = role
}

// createPost inserts a post owned by u.
func (env *testEnv) createPost(t *testing.T, u model.User, text string) model.Post {
	t.Helper()
	p, err := env.posts.Create(context.Background(), u.ID, nil, text)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// farFuture is an expiry comfortably beyond any test's runtime.
func farFuture() time.Time { return time.Now().Add(time.Hour) }

// stubToggler returns a fixed outcome or error, standing in for a toggle
// repository that, for example, lost an insert race.
type stubToggler struct {
	outcome repository.ToggleOutcome
	err     error
}

func (s stubToggler) Toggle(context.Context, uint64, uint64) (repository.ToggleOutcome, error) {
	return s.outcome, s.err
}

// decode unmarshals a recorded JSON response body.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "response body: %s", rec.Body.String())
}

// countRows returns the row count of a table.
func (env *testEnv) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := env.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// wantStatus fails the test when the recorded status does not match.
func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}
