package model

import "time"

// Post mirrors the 'post' table. RelatedToPost is a self-reference used
// for replies. Likes is a denormalized counter kept in sync with the
// post_like table by the like toggle.
type Post struct {
	ID            uint64    `json:"id"`
	RelatedToPost *uint64   `json:"related_to_post,omitempty"`
	UserID        uint64    `json:"user_id"`
	Text          string    `json:"text"`
	Likes         int64     `json:"likes"`
	Comments      int64     `json:"comments"`
	CreatedAt     time.Time `json:"created_at"`
}
