// Package queue defines message payloads exchanged over the message broker.
package queue

// Engagement event kinds published after successful writes. Each kind maps
// to a route's side effect; consumers fan these out to notification or
// analytics sinks without querying the primary database.
const (
	KindUserFollowed = "user.followed"
	KindPostLiked    = "post.liked"
	KindPostCreated  = "post.created"
)

// EngagementEvent is published when a user follows someone, likes a post
// or publishes a post. Outcome is "created" or "removed" for toggle kinds
// so consumers can tell a follow from an unfollow.
type EngagementEvent struct {
	Kind       string `json:"kind"`
	ActorID    uint64 `json:"actor_id"`
	SubjectID  uint64 `json:"subject_id"` // followed user id or affected post id
	Outcome    string `json:"outcome,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
