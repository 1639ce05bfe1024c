package service

import (
	"context"
	"log/slog"

	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/repository"
)

// SocialService owns the follow graph.
type SocialService struct {
	follows repository.FollowRepository
	logger  *slog.Logger
}

func NewSocialService(follows repository.FollowRepository, logger *slog.Logger) *SocialService {
	return &SocialService{follows: follows, logger: logger}
}

// FollowResult is the outcome of a follow toggle.
type FollowResult struct {
	Following bool `json:"following"`
}

// ToggleFollow flips the follow edge from userID to targetID and returns the
// resulting state. Toggling twice always lands back where it started.
func (s *SocialService) ToggleFollow(ctx context.Context, userID, targetID string) (*FollowResult, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to follow users")
	}
	if userID == targetID {
		return nil, apperror.ValidationFailed("id", "you cannot follow yourself")
	}

	following, err := s.follows.Toggle(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("follow toggled",
		slog.String("followerID", userID),
		slog.String("followingID", targetID),
		slog.Bool("following", following),
	)

	return &FollowResult{Following: following}, nil
}

// IsFollowing reports whether userID follows targetID.
func (s *SocialService) IsFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.follows.Exists(ctx, userID, targetID)
}
