package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/repository"
)

// LikeDB implements repository.LikeRepository.
//
// Toggles run as one transaction: DELETE the like row, and if nothing was
// deleted, INSERT it. The partial unique index on (user_id, target) means a
// concurrent toggle either deletes the same row first (this one inserts) or
// inserts first (this one's insert fails the constraint and the transaction
// rolls back) — never a double-insert or double-delete.
type LikeDB struct {
	conn *sql.DB
}

// Likes returns the like repository backed by this database.
func (db *DB) Likes() *LikeDB {
	return &LikeDB{conn: db.conn}
}

var _ repository.LikeRepository = (*LikeDB)(nil)

// TogglePostLike flips the (userID, postID) like and returns the new state
// plus the post's like count after the flip.
func (r *LikeDB) TogglePostLike(ctx context.Context, userID, postID string) (bool, int, error) {
	return r.toggle(ctx, userID, postID, "post")
}

// ToggleCommentLike flips the (userID, commentID) like and returns the new
// state plus the comment's like count after the flip.
func (r *LikeDB) ToggleCommentLike(ctx context.Context, userID, commentID string) (bool, int, error) {
	return r.toggle(ctx, userID, commentID, "comment")
}

func (r *LikeDB) toggle(ctx context.Context, userID, targetID, kind string) (liked bool, count int, err error) {
	targetTable := kind + "s" // posts / comments
	targetColumn := kind + "_id"

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("sqlite: beginning like toggle: %w", err)
	}
	defer tx.Rollback()

	// The target must exist; a missing row is NotFound, not a silent no-op.
	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+targetTable+` WHERE id = ?`, targetID,
	).Scan(&exists)
	if err != nil {
		return false, 0, fmt.Errorf("sqlite: checking %s %s: %w", kind, targetID, err)
	}
	if exists == 0 {
		return false, 0, apperror.NotFound(kind, targetID)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = ? AND `+targetColumn+` = ?`,
		userID, targetID,
	)
	if err != nil {
		return false, 0, fmt.Errorf("sqlite: deleting like: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("sqlite: deleting like: %w", err)
	}

	if deleted == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO likes (id, user_id, `+targetColumn+`, created_at) VALUES (?, ?, ?, ?)`,
			xid.New().String(), userID, targetID, time.Now().UTC(),
		)
		if err != nil {
			return false, 0, fmt.Errorf("sqlite: inserting like: %w", err)
		}
		liked = true
	}

	// Counter triggers fired inside this transaction, so the count read here
	// is the post-flip value.
	err = tx.QueryRowContext(ctx,
		`SELECT likes_count FROM `+targetTable+` WHERE id = ?`, targetID,
	).Scan(&count)
	if err != nil {
		return false, 0, fmt.Errorf("sqlite: reading %s like count: %w", kind, err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("sqlite: committing like toggle: %w", err)
	}
	return liked, count, nil
}
