package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/model"
	"github.com/sakif/pulse/internal/repository"
)

// PostDB implements repository.PostRepository.
type PostDB struct {
	conn *sql.DB
}

// Posts returns the post repository backed by this database.
func (db *DB) Posts() *PostDB {
	return &PostDB{conn: db.conn}
}

var _ repository.PostRepository = (*PostDB)(nil)

// Create inserts a new post owned by post.UserID. ID and timestamps are
// generated here; media URLs are stored as a JSON array.
func (r *PostDB) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	media := post.MediaURLs
	if media == nil {
		media = []string{}
	}
	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return fmt.Errorf("sqlite: encoding media urls: %w", err)
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, content, media_urls, mood, dimension, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.UserID, post.Content, string(mediaJSON),
		post.Mood, post.Dimension, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post (user=%s): %w", post.UserID, err)
	}
	return nil
}

const postSelect = `
	SELECT p.id, p.user_id, p.content, p.media_urls, p.mood, p.dimension,
	       p.likes_count, p.comments_count, p.reposts_count, p.created_at, p.updated_at,
	       pr.id, pr.username, pr.display_name, pr.avatar_url, pr.verified, pr.level,
	       EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = ?)
	FROM posts p
	JOIN profiles pr ON pr.id = p.user_id`

// GetByID retrieves a single post with its author joined. Single-post reads
// carry no viewer, so ViewerLiked is always false here.
func (r *PostDB) GetByID(ctx context.Context, id string) (*model.Post, error) {
	row := r.conn.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, "", id)
	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}
	return post, nil
}

// List returns posts newest-first with the owning profile's public fields
// and trigger-maintained like/comment counts. An empty viewerID matches no
// likes, so anonymous reads get ViewerLiked=false throughout.
func (r *PostDB) List(ctx context.Context, viewerID string, opts repository.ListOptions) ([]model.Post, error) {
	rows, err := r.conn.QueryContext(ctx,
		postSelect+` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		viewerID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	return posts, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*model.Post, error) {
	var (
		p         model.Post
		author    model.ProfileSummary
		mediaJSON string
	)
	err := s.Scan(
		&p.ID, &p.UserID, &p.Content, &mediaJSON, &p.Mood, &p.Dimension,
		&p.LikesCount, &p.CommentsCount, &p.RepostsCount, &p.CreatedAt, &p.UpdatedAt,
		&author.ID, &author.Username, &author.DisplayName, &author.AvatarURL,
		&author.Verified, &author.Level,
		&p.ViewerLiked,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(mediaJSON), &p.MediaURLs); err != nil {
		return nil, fmt.Errorf("decoding media urls for post %s: %w", p.ID, err)
	}
	p.Author = &author
	return &p, nil
}
