package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/karales/social-network-api/internal/model"
)

// PostRepo owns the 'post' table. Rows travel as model.Post.
type PostRepo struct{ DB *sql.DB }

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{DB: db} }

const postColumns = "id, related_to_post, user_id, text, likes, comments, created_at"

func scanPosts(rows *sql.Rows) ([]model.Post, error) {
	defer rows.Close()
	posts := make([]model.Post, 0)
	for rows.Next() {
		var p model.Post
		var related sql.NullInt64
		if err := rows.Scan(&p.ID, &related, &p.UserID, &p.Text,
			&p.Likes, &p.Comments, &p.CreatedAt); err != nil {
			return nil, err
		}
		if related.Valid {
			rid := uint64(related.Int64)
			p.RelatedToPost = &rid
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// Create inserts a post owned by userID and returns the stored row.
// relatedTo may be nil for a top-level post; a dangling reference is
// rejected by the post table's self foreign key.
func (r *PostRepo) Create(ctx context.Context, userID uint64, relatedTo *uint64, text string) (model.Post, error) {
	now := time.Now().UTC()
	var related interface{}
	if relatedTo != nil {
		related = *relatedTo
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO post (related_to_post, user_id, text, created_at) VALUES (?,?,?,?)",
		related, userID, text, now)
	if err != nil {
		return model.Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a post by id. Missing rows map to ErrNotFound.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (model.Post, error) {
	var p model.Post
	var related sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM post WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &related, &p.UserID, &p.Text, &p.Likes, &p.Comments, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Post{}, ErrNotFound
	}
	if err != nil {
		return model.Post{}, err
	}
	if related.Valid {
		rid := uint64(related.Int64)
		p.RelatedToPost = &rid
	}
	return p, nil
}

// List returns all posts, newest first.
func (r *PostRepo) List(ctx context.Context) ([]model.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+postColumns+" FROM post ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// ListFeed returns posts authored by users the viewer follows, newest
// first. Authors are resolved through the follower edge table, so the
// feed reflects the viewer's current subscriptions.
func (r *PostRepo) ListFeed(ctx context.Context, viewerID uint64) ([]model.Post, error) {
	const q = `SELECT p.id, p.related_to_post, p.user_id, p.text, p.likes, p.comments, p.created_at
	           FROM post p
	           JOIN follower f ON f.user_id = p.user_id
	           WHERE f.follower_id = ?
	           ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.DB.QueryContext(ctx, q, viewerID)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// UpdateText replaces the text of a post and returns the updated row.
func (r *PostRepo) UpdateText(ctx context.Context, id uint64, text string) (model.Post, error) {
	res, err := r.DB.ExecContext(ctx, "UPDATE post SET text=? WHERE id=?", text, id)
	if err != nil {
		return model.Post{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Post{}, err
	}
	if n == 0 {
		// Distinguish "missing" from "unchanged text" before giving up.
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return model.Post{}, gerr
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a post by id. Missing rows map to ErrNotFound. Rows in
// post_like referencing the post block the delete (FK NO ACTION) and
// surface as an error rather than a cascade.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM post WHERE id=?", id)
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
