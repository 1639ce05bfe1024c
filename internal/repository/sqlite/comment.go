package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/model"
	"github.com/sakif/pulse/internal/repository"
)

// CommentDB implements repository.CommentRepository.
type CommentDB struct {
	conn *sql.DB
}

// Comments returns the comment repository backed by this database.
func (db *DB) Comments() *CommentDB {
	return &CommentDB{conn: db.conn}
}

var _ repository.CommentRepository = (*CommentDB)(nil)

// Create inserts a new comment. The service layer has already verified the
// post exists and that a parent, if given, is a comment on the same post.
func (r *CommentDB) Create(ctx context.Context, c *model.Comment) error {
	c.ID = xid.New().String()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, user_id, parent_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.UserID, c.ParentID, c.Content, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment (post=%s): %w", c.PostID, err)
	}
	return nil
}

const commentSelect = `
	SELECT c.id, c.post_id, c.user_id, c.parent_id, c.content, c.likes_count,
	       c.created_at, c.updated_at,
	       pr.id, pr.username, pr.display_name, pr.avatar_url, pr.verified, pr.level
	FROM comments c
	JOIN profiles pr ON pr.id = c.user_id`

// GetByID retrieves a single comment with its author joined.
func (r *CommentDB) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	row := r.conn.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id)
	comment, err := scanComment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return comment, nil
}

// ListByPost returns a post's comments oldest-first with author profiles.
func (r *CommentDB) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := r.conn.QueryContext(ctx,
		commentSelect+` WHERE c.post_id = ? ORDER BY c.created_at ASC, c.id ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %s: %w", postID, err)
	}
	return comments, nil
}

func scanComment(s scanner) (*model.Comment, error) {
	var (
		c      model.Comment
		author model.ProfileSummary
		parent sql.NullString
	)
	err := s.Scan(
		&c.ID, &c.PostID, &c.UserID, &parent, &c.Content, &c.LikesCount,
		&c.CreatedAt, &c.UpdatedAt,
		&author.ID, &author.Username, &author.DisplayName, &author.AvatarURL,
		&author.Verified, &author.Level,
	)
	if err != nil {
		return nil, err
	}
	if parent.Valid {
		c.ParentID = &parent.String
	}
	c.Author = &author
	return &c, nil
}
