package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// VoteRepository is the write side of the vote ledger.
type VoteRepository interface {
	// Apply records a user's vote on a post and keeps the post's point
	// total in step with the vote rows. It returns false when the user
	// had already cast the same vote (benign no-op). Returns ErrNotFound
	// when the post does not exist.
	Apply(ctx context.Context, userID, postID int64, value int) (bool, error)
}

// SQLiteVoteRepository implements VoteRepository on a SQL database.
type SQLiteVoteRepository struct {
	db *sql.DB
}

// NewVoteRepository creates a new SQLiteVoteRepository.
func NewVoteRepository(db *sql.DB) *SQLiteVoteRepository {
	return &SQLiteVoteRepository{db: db}
}

// Apply runs the whole read-modify-write as one transaction: the vote row
// and the denormalized point total must never be observed out of step.
func (r *SQLiteVoteRepository) Apply(ctx context.Context, userID, postID int64, value int) (changed bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var exists int64
	if err = tx.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = ?`, postID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	var prev int
	err = tx.QueryRowContext(ctx,
		`SELECT value FROM votes WHERE user_id = ? AND post_id = ?`, userID, postID).Scan(&prev)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First vote on this post.
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO votes (user_id, post_id, value) VALUES (?, ?, ?)`,
			userID, postID, value); err != nil {
			return false, fmt.Errorf("db error: %w", err)
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE posts SET points = points + ? WHERE id = ?`, value, postID); err != nil {
			return false, fmt.Errorf("db error: %w", err)
		}

	case err != nil:
		return false, fmt.Errorf("db error: %w", err)

	case prev == value:
		// Same vote again: nothing to do.
		tx.Rollback()
		return false, nil

	default:
		// Changing sides reverses the old vote and applies the new one.
		if _, err = tx.ExecContext(ctx,
			`UPDATE votes SET value = ? WHERE user_id = ? AND post_id = ?`,
			value, userID, postID); err != nil {
			return false, fmt.Errorf("db error: %w", err)
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE posts SET points = points + ? WHERE id = ?`, 2*value, postID); err != nil {
			return false, fmt.Errorf("db error: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}
