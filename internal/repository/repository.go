// Package repository declares the storage interfaces the service layer is
// written against. The sqlite subpackage is the concrete implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/pulse/internal/model"
)

// ListOptions carries pagination for feed reads.
type ListOptions struct {
	Limit  int
	Offset int
}

// ProfileRepository stores user accounts and public profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	GetByGoogleID(ctx context.Context, googleID string) (*model.Profile, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, profile *model.Profile) error
}

// PostRepository stores feed posts.
//
// List returns posts newest-first, each with the owning profile's public
// fields. viewerID may be empty (anonymous read); when set, each post's
// ViewerLiked flag reflects that user's likes.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, viewerID string, opts ListOptions) ([]model.Post, error)
}

// CommentRepository stores post comments. ListByPost returns comments
// oldest-first with author profiles joined.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
}

// LikeRepository flips like rows. Both toggles run as a single transaction
// (delete, insert if nothing was deleted) so concurrent toggles cannot
// double-insert or double-delete. They return the resulting state and the
// target's like count after the flip.
type LikeRepository interface {
	TogglePostLike(ctx context.Context, userID, postID string) (liked bool, count int, err error)
	ToggleCommentLike(ctx context.Context, userID, commentID string) (liked bool, count int, err error)
}

// FollowRepository flips follow edges with the same atomic toggle shape as
// likes. Toggle returns whether the follower now follows the target.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followingID string) (following bool, err error)
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
}

// ConversationRepository stores direct-message threads. Participants are
// stored in lexicographic order; FindByParticipants expects the pair already
// normalized.
type ConversationRepository interface {
	Create(ctx context.Context, conv *model.Conversation) error
	GetByID(ctx context.Context, id string) (*model.Conversation, error)
	FindByParticipants(ctx context.Context, participant1, participant2 string) (*model.Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]model.Conversation, error)
}

// MessageRepository stores messages. ListByConversation returns messages
// oldest-first with sender profiles joined. MarkRead stamps read_at on every
// unread message in the conversation not sent by readerID.
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]model.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) error
}
