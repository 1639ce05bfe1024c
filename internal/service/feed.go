package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/model"
	"github.com/sakif/pulse/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	maxContentLength = 2000
	maxMediaURLs     = 4
)

// FeedService owns posts, comments, and like toggles.
type FeedService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	logger   *slog.Logger
}

func NewFeedService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	logger *slog.Logger,
) *FeedService {
	return &FeedService{
		posts:    posts,
		comments: comments,
		likes:    likes,
		logger:   logger,
	}
}

// GetPosts returns a page of the feed, newest-first. viewerID may be empty;
// an anonymous read succeeds and just gets viewerLiked=false everywhere.
// limit is clamped to 1..100 (0 means the default page size), a negative
// offset is treated as 0.
func (s *FeedService) GetPosts(ctx context.Context, viewerID string, limit, offset int) ([]model.Post, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.posts.List(ctx, viewerID, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("service/feed: listing posts: %w", err)
	}
	return posts, nil
}

// CreatePostInput is the client-supplied part of a new post. The owner comes
// from the session, never from the payload.
type CreatePostInput struct {
	Content   string   `json:"content"`
	Mood      string   `json:"mood"`
	Dimension string   `json:"dimension"`
	MediaURLs []string `json:"mediaUrls"`
}

func (s *FeedService) CreatePost(ctx context.Context, userID string, input CreatePostInput) (*model.Post, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to post")
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "post content must not be empty")
	}
	if len(content) > maxContentLength {
		return nil, apperror.ValidationFailed("content", fmt.Sprintf("post content must be at most %d characters", maxContentLength))
	}
	if !model.ValidMood(input.Mood) {
		return nil, apperror.ValidationFailed("mood", fmt.Sprintf("mood must be one of %s", strings.Join(model.Moods, ", ")))
	}
	if !model.ValidDimension(input.Dimension) {
		return nil, apperror.ValidationFailed("dimension", fmt.Sprintf("dimension must be one of %s", strings.Join(model.Dimensions, ", ")))
	}
	if len(input.MediaURLs) > maxMediaURLs {
		return nil, apperror.ValidationFailed("mediaUrls", fmt.Sprintf("a post can carry at most %d media attachments", maxMediaURLs))
	}

	post := &model.Post{
		UserID:    userID,
		Content:   content,
		Mood:      input.Mood,
		Dimension: input.Dimension,
		MediaURLs: input.MediaURLs,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("service/feed: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("userID", userID),
		slog.String("mood", post.Mood),
	)

	return s.posts.GetByID(ctx, post.ID)
}

// LikeResult is the outcome of a like toggle: the state after the flip and
// the target's like count read in the same transaction.
type LikeResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"likesCount"`
}

func (s *FeedService) TogglePostLike(ctx context.Context, userID, postID string) (*LikeResult, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to like posts")
	}

	liked, count, err := s.likes.TogglePostLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, Count: count}, nil
}

func (s *FeedService) ToggleCommentLike(ctx context.Context, userID, commentID string) (*LikeResult, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to like comments")
	}

	liked, count, err := s.likes.ToggleCommentLike(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, Count: count}, nil
}

// GetComments returns a post's comments oldest-first. A missing post is
// NotFound rather than an empty list.
func (s *FeedService) GetComments(ctx context.Context, postID string) ([]model.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("service/feed: listing comments for post %s: %w", postID, err)
	}
	return comments, nil
}

// CreateCommentInput is the client-supplied part of a new comment.
type CreateCommentInput struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

// CreateComment adds a comment to a post. A reply's parent must be a comment
// on the same post.
func (s *FeedService) CreateComment(ctx context.Context, userID, postID string, input CreateCommentInput) (*model.Comment, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to comment")
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content must not be empty")
	}
	if len(content) > maxContentLength {
		return nil, apperror.ValidationFailed("content", fmt.Sprintf("comment content must be at most %d characters", maxContentLength))
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, apperror.ValidationFailed("parentId", "parent comment belongs to a different post")
		}
	}

	comment := &model.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: input.ParentID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/feed: creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("commentID", comment.ID),
		slog.String("postID", postID),
		slog.String("userID", userID),
	)

	return s.comments.GetByID(ctx, comment.ID)
}
