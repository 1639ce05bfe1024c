// Package model defines the data structures used throughout the application.
package model

import "time"

// Profile represents a user's account and public profile in one row.
//
// The profile ID doubles as the auth user ID: whichever way the account was
// created (Google OAuth or email/password), exactly one profiles row exists
// and its id is what goes into the JWT subject claim.
//
// GoogleID holds Google's stable subject identifier for OAuth accounts and is
// empty for credential-only accounts. PasswordHash is empty for OAuth-only
// accounts. Both are excluded from JSON output.
type Profile struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"displayName"`
	Email         string    `json:"email"`
	AvatarURL     string    `json:"avatarUrl"`
	Bio           string    `json:"bio"`
	Website       string    `json:"website"`
	Location      string    `json:"location"`
	Verified      bool      `json:"verified"`
	Level         int       `json:"level"`
	Energy        int       `json:"energy"`
	Constellation string    `json:"constellation"`

	// Denormalized counters, maintained by database triggers.
	FollowersCount int `json:"followersCount"`
	FollowingCount int `json:"followingCount"`
	PostsCount     int `json:"postsCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	GoogleID     string `json:"-"`
	PasswordHash string `json:"-"`
}

// ProfileSummary is the subset of profile fields joined onto posts, comments,
// messages, and conversations. Keeping it small bounds the payload of feed
// queries that return one summary per row.
type ProfileSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	Verified    bool   `json:"verified"`
	Level       int    `json:"level"`
}

// Summary returns the public subset of a full profile.
func (p *Profile) Summary() *ProfileSummary {
	return &ProfileSummary{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Verified:    p.Verified,
		Level:       p.Level,
	}
}
