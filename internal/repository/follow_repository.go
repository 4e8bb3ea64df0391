package repository

import (
	"context"
	"database/sql"
	"time"
)

// FollowRepo owns the follower edge table and the denormalized follower/
// following counters on the user table. A row (user_id, follower_id) means
// "follower_id follows user_id"; the row's existence is the source of truth
// and the counters on both endpoint users are derived from it. Every
// mutation here touches the edge and both counters inside one transaction
// so the invariant holds on every commit.
type FollowRepo struct{ DB *sql.DB }

func NewFollowRepo(db *sql.DB) *FollowRepo { return &FollowRepo{DB: db} }

// Toggle flips the follow edge from followerID to targetID. If the edge
// exists it is removed and both counters are decremented; otherwise it is
// inserted and both counters are incremented. The delete-first shape keeps
// the critical section to two statements: a racing duplicate insert is
// rejected by the primary key and surfaces as ErrConflict, which callers
// may retry. Missing users yield ErrNotFound; following yourself yields
// ErrSelfAction.
func (r *FollowRepo) Toggle(ctx context.Context, targetID, followerID uint64) (ToggleOutcome, error) {
	if targetID == followerID {
		return 0, ErrSelfAction
	}
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
		"DELETE FROM follower WHERE user_id=? AND follower_id=?", targetID, followerID)
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
	delta := deltaFor(outcome)

	// The counter updates double as existence checks: a zero row count
	// means the endpoint user is gone and the whole toggle aborts. The two
	// user rows are always locked in ascending id order so reciprocal
	// toggles (A follows B while B follows A) cannot deadlock.
	firstID, firstCol := targetID, "followers"
	secondID, secondCol := followerID, "following"
	if followerID < targetID {
		firstID, firstCol = followerID, "following"
		secondID, secondCol = targetID, "followers"
	}
	if err := adjustUserCounter(ctx, tx, firstCol, firstID, delta); err != nil {
		return 0, err
	}
	if err := adjustUserCounter(ctx, tx, secondCol, secondID, delta); err != nil {
		return 0, err
	}

	if outcome == ToggleCreated {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO follower (user_id, follower_id, created_at) VALUES (?,?,?)",
			targetID, followerID, time.Now().UTC())
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

// Exists reports whether followerID currently follows targetID.
func (r *FollowRepo) Exists(ctx context.Context, targetID, followerID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM follower WHERE user_id=? AND follower_id=? LIMIT 1",
		targetID, followerID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// adjustUserCounter applies a +1/-1 delta to a named counter column of a
// user row within the transaction. The column name comes from a fixed set
// of call sites, never from input.
func adjustUserCounter(ctx context.Context, tx *sql.Tx, column string, userID uint64, delta int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE user SET "+column+"="+column+"+? WHERE id=?", delta, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
