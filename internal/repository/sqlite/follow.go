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

// FollowDB implements repository.FollowRepository with the same
// single-transaction toggle shape as likes.
type FollowDB struct {
	conn *sql.DB
}

// Follows returns the follow repository backed by this database.
func (db *DB) Follows() *FollowDB {
	return &FollowDB{conn: db.conn}
}

var _ repository.FollowRepository = (*FollowDB)(nil)

// Toggle flips the (followerID, followingID) edge and reports whether the
// follower now follows the target. The target must exist.
func (r *FollowDB) Toggle(ctx context.Context, followerID, followingID string) (bool, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning follow toggle: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM profiles WHERE id = ?`, followingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking profile %s: %w", followingID, err)
	}
	if exists == 0 {
		return false, apperror.NotFound("profile", followingID)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting follow: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting follow: %w", err)
	}

	following := false
	if deleted == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO follows (id, follower_id, following_id, created_at) VALUES (?, ?, ?, ?)`,
			xid.New().String(), followerID, followingID, time.Now().UTC(),
		)
		if err != nil {
			return false, fmt.Errorf("sqlite: inserting follow: %w", err)
		}
		following = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing follow toggle: %w", err)
	}
	return following, nil
}

// Exists reports whether followerID currently follows followingID.
func (r *FollowDB) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking follow: %w", err)
	}
	return count > 0, nil
}
