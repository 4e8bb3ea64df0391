// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between failure scenarios without parsing driver error
// strings. For example, ErrConflict signals that a concurrent writer won a
// race on an edge row, while ErrNotFound indicates that a referenced row
// does not exist.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a user or post referenced by an operation
// does not exist. Handlers should translate this into an HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when registering a username that is
// already taken. Handlers should translate this into an HTTP 400.
var ErrUsernameExists = errors.New("username already exists")

// ErrWrongCredentials is returned when a login attempt names an unknown
// user or supplies a password that does not match. Handlers must map this
// to HTTP 401, never 500.
var ErrWrongCredentials = errors.New("wrong credentials")

// ErrConflict is returned when two concurrent toggles race on the same
// edge and the database's uniqueness constraint rejects the second insert.
// The operation is safe to retry; handlers should translate this into an
// HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrSelfAction is returned when a user attempts to follow themselves.
// Handlers should translate this into an HTTP 400.
var ErrSelfAction = errors.New("self-referential action")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own and their role does not override ownership.
// Handlers should translate this into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// isDuplicateKey reports whether err is a primary/unique key violation.
// MySQL signals these with error 1062; SQLite (used by the test suite)
// reports a UNIQUE constraint failure.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint")
}
