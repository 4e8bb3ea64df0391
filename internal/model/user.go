package model

import "time"

// User mirrors the 'user' table. PasswordHash is excluded from JSON so the
// struct can be serialized directly in handler responses. Followers and
// Following are denormalized counters kept in sync with the follower table
// by the follow toggle.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Followers    int64     `json:"followers"`
	Following    int64     `json:"following"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
