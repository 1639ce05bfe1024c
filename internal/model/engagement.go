package model

import "time"

// Like is a single like row. Exactly one of PostID or CommentID is set —
// the schema enforces this with a CHECK constraint, and (user, target) is
// unique so a toggle is an idempotent flip.
type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PostID    *string   `json:"postId,omitempty"`
	CommentID *string   `json:"commentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Follow is a directed edge in the follow graph. (FollowerID, FollowingID)
// is unique and self-follows are rejected both in the service and by a
// schema CHECK.
type Follow struct {
	ID          string    `json:"id"`
	FollowerID  string    `json:"followerId"`
	FollowingID string    `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}
