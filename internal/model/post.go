package model

import "time"

// Moods and dimensions a post can carry. These are closed sets — the service
// layer rejects anything else before it reaches the database, and the schema
// carries matching CHECK constraints.
var (
	Moods      = []string{"spark", "flow", "storm", "calm", "burst"}
	Dimensions = []string{"personal", "creative", "tech", "nature", "cosmic"}
)

// ValidMood reports whether mood is one of the allowed values.
func ValidMood(mood string) bool {
	for _, m := range Moods {
		if m == mood {
			return true
		}
	}
	return false
}

// ValidDimension reports whether dimension is one of the allowed values.
func ValidDimension(dimension string) bool {
	for _, d := range Dimensions {
		if d == dimension {
			return true
		}
	}
	return false
}

// Post represents a single feed post.
//
// MediaURLs is stored as a JSON array in a TEXT column; the repository handles
// the encoding. LikesCount, CommentsCount, and RepostsCount are denormalized
// and maintained by database triggers, so reads never aggregate.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	MediaURLs []string  `json:"mediaUrls"`
	Mood      string    `json:"mood"`
	Dimension string    `json:"dimension"`

	LikesCount    int `json:"likesCount"`
	CommentsCount int `json:"commentsCount"`
	RepostsCount  int `json:"repostsCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Author is the owning profile's public fields, populated on feed reads.
	Author *ProfileSummary `json:"author,omitempty"`

	// ViewerLiked reports whether the requesting user has liked this post.
	// Always false for anonymous reads.
	ViewerLiked bool `json:"viewerLiked"`
}
