package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/updoot/updoot-be/internal/models"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, creatorID int64, title, text string) (*models.Post, error)
	GetByID(ctx context.Context, id int64, viewerID *int64) (*models.Post, error)
	List(ctx context.Context, limit int, cursor *time.Time, viewerID *int64) ([]*models.Post, error)
	Update(ctx context.Context, id, creatorID int64, title, text string) (*models.Post, error)
	Delete(ctx context.Context, id, creatorID int64) error
	ReconcilePoints(ctx context.Context) (int64, error)
}

// SQLitePostRepository implements PostRepository on a SQL database.
type SQLitePostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new SQLitePostRepository.
func NewPostRepository(db *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{db: db}
}

const postColumns = `p.id, p.title, p.text, p.points, p.creator_id, p.created_at, p.updated_at,
	u.username, u.created_at, u.updated_at, v.value`

// scanPost reads one row produced by a query selecting postColumns.
func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	post := &models.Post{Creator: &models.User{}}
	var voteStatus sql.NullInt64
	err := row.Scan(
		&post.ID, &post.Title, &post.Text, &post.Points, &post.CreatorID,
		&post.CreatedAt, &post.UpdatedAt,
		&post.Creator.Username, &post.Creator.CreatedAt, &post.Creator.UpdatedAt,
		&voteStatus,
	)
	if err != nil {
		return nil, err
	}
	post.Creator.ID = post.CreatorID
	if voteStatus.Valid {
		v := int(voteStatus.Int64)
		post.VoteStatus = &v
	}
	return post, nil
}

// Create inserts a new post for the given creator.
func (r *SQLitePostRepository) Create(ctx context.Context, creatorID int64, title, text string) (*models.Post, error) {
	now := time.Now().UTC()

	query := `INSERT INTO posts (title, text, creator_id, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?)
	          RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, title, text, creatorID, now, now).Scan(&id); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r.GetByID(ctx, id, &creatorID)
}

// GetByID retrieves a post with its creator. When viewerID is non-nil the
// post's VoteStatus reflects that user's vote.
func (r *SQLitePostRepository) GetByID(ctx context.Context, id int64, viewerID *int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + `
	          FROM posts p
	          JOIN users u ON u.id = p.creator_id
	          LEFT JOIN votes v ON v.post_id = p.id AND v.user_id = ?
	          WHERE p.id = ?`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, nullableID(viewerID), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

// List returns up to limit posts in reverse chronological order. A non-nil
// cursor restricts results to posts created strictly before it.
func (r *SQLitePostRepository) List(ctx context.Context, limit int, cursor *time.Time, viewerID *int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + `
	          FROM posts p
	          JOIN users u ON u.id = p.creator_id
	          LEFT JOIN votes v ON v.post_id = p.id AND v.user_id = ?`
	args := []any{nullableID(viewerID)}

	if cursor != nil {
		query += ` WHERE p.created_at < ?`
		args = append(args, cursor.UTC())
	}
	query += ` ORDER BY p.created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return posts, nil
}

// Update rewrites a post's title and text. Only the creator may update;
// a mismatched creatorID behaves like a missing post.
func (r *SQLitePostRepository) Update(ctx context.Context, id, creatorID int64, title, text string) (*models.Post, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, text = ?, updated_at = ? WHERE id = ? AND creator_id = ?`,
		title, text, time.Now().UTC(), id, creatorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id, &creatorID)
}

// Delete removes a post owned by creatorID; its votes cascade.
func (r *SQLitePostRepository) Delete(ctx context.Context, id, creatorID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ? AND creator_id = ?`, id, creatorID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReconcilePoints rewrites any post whose stored point total has drifted
// from the sum of its vote rows and returns how many rows were repaired.
func (r *SQLitePostRepository) ReconcilePoints(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts
		SET points = (SELECT COALESCE(SUM(value), 0) FROM votes WHERE votes.post_id = posts.id)
		WHERE points <> (SELECT COALESCE(SUM(value), 0) FROM votes WHERE votes.post_id = posts.id)`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}

// nullableID converts an optional user id into a driver-friendly argument.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
