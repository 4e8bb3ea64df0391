package repository

import (
	"context"
	"database/sql"
	"time"
)

// LikeRepo owns the post_like edge table and the denormalized likes
// counter on the post table. A row (post_id, user_id) means "user_id likes
// post_id". It is the same transactional toggle pattern as FollowRepo with
// a single counter on the liked post.
type LikeRepo struct{ DB *sql.DB }

func NewLikeRepo(db *sql.DB) *LikeRepo { return &LikeRepo{DB: db} }

// Toggle flips the like edge from userID on postID, adjusting post.likes
// by exactly one in the same transaction. A missing post yields
// ErrNotFound; a racing duplicate insert yields ErrConflict.
func (r *LikeRepo) Toggle(ctx context.Context, postID, userID uint64) (ToggleOutcome, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM post_like WHERE post_id=? AND user_id=?", postID, userID)
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	outcome := ToggleCreated
	if removed == 1 {
		outcome = ToggleRemoved
	}

	// Relative update doubles as the existence check for the post.
	cres, err := tx.ExecContext(ctx,
		"UPDATE post SET likes=likes+? WHERE id=?", deltaFor(outcome), postID)
	if err != nil {
		return 0, err
	}
	n, err := cres.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}

	if outcome == ToggleCreated {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO post_like (post_id, user_id, created_at) VALUES (?,?,?)",
			postID, userID, time.Now().UTC())
		if err != nil {
			if isDuplicateKey(err) {
				return 0, ErrConflict
			}
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return outcome, nil
}

// Exists reports whether userID currently likes postID.
func (r *LikeRepo) Exists(ctx context.Context, postID, userID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM post_like WHERE post_id=? AND user_id=? LIMIT 1",
		postID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
