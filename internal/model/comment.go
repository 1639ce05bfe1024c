package model

import "time"

// Comment represents a comment on a post. Threading is a single level of
// self-reference: ParentID, when set, must point at another comment on the
// same post (the service validates this on create).
type Comment struct {
	ID       string  `json:"id"`
	PostID   string  `json:"postId"`
	UserID   string  `json:"userId"`
	ParentID *string `json:"parentId,omitempty"`
	Content  string  `json:"content"`

	// Trigger-maintained.
	LikesCount int `json:"likesCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Author *ProfileSummary `json:"author,omitempty"`
}
