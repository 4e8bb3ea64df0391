package repository

// The repository tests run against an in-memory SQLite database via the
// pure-Go modernc.org/sqlite driver. The SQL in this package sticks to the
// common subset of MySQL and SQLite (`?` placeholders, relative counter
// updates, timestamps supplied from Go), so the same statements that run
// in production run here without a MySQL server.

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/karales/social-network-api/internal/model"
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

// newTestDB returns an in-memory database with the application schema.
// The pool is capped at one connection because every ":memory:" connection
// would otherwise be a distinct empty database.
func newTestDB(t *testing.T) *sql.DB {
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
	return db
}

// createTestUser inserts a user and fails the test on error.
func createTestUser(t *testing.T, db *sql.DB, username string) model.User {
	t.Helper()
	repo := NewUserRepo(db)
	id, err := repo.Create(context.Background(), username, username+"@example.com", "x")
	if err != nil {
		t.Fatalf("create test user %q: %v", username, err)
	}
	u, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load test user %q: %v", username, err)
	}
	return u
}

// createTestPost inserts a post owned by userID and fails the test on error.
func createTestPost(t *testing.T, db *sql.DB, userID uint64, text string) model.Post {
	t.Helper()
	p, err := NewPostRepo(db).Create(context.Background(), userID, nil, text)
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return p
}

// countRows returns the row count of a table.
func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// sanity check that the schema and driver round-trip the core types
func TestSchemaRoundTrip(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "alice")
	if u.Role != model.RoleUser {
		t.Errorf("new user role = %v, want %v", u.Role, model.RoleUser)
	}
	if u.CreatedAt.IsZero() {
		t.Error("created_at did not round-trip through the driver")
	}
	if time.Since(u.CreatedAt) > time.Minute {
		t.Errorf("created_at %v is not recent", u.CreatedAt)
	}
}
