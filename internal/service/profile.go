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

// ProfileService owns public profile reads and own-profile updates.
type ProfileService struct {
	profiles repository.ProfileRepository
	follows  repository.FollowRepository
	logger   *slog.Logger
}

func NewProfileService(
	profiles repository.ProfileRepository,
	follows repository.FollowRepository,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{profiles: profiles, follows: follows, logger: logger}
}

// ProfileView is a profile plus the viewer's relationship to it.
type ProfileView struct {
	*model.Profile
	ViewerFollowing bool `json:"viewerFollowing"`
}

// GetProfile loads a profile by ID. viewerID may be empty; when set, the view
// includes whether the viewer follows this profile.
func (s *ProfileService) GetProfile(ctx context.Context, viewerID, profileID string) (*ProfileView, error) {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{Profile: profile}
	if viewerID != "" && viewerID != profileID {
		following, err := s.follows.Exists(ctx, viewerID, profileID)
		if err != nil {
			return nil, fmt.Errorf("service/profile: checking follow edge: %w", err)
		}
		view.ViewerFollowing = following
	}
	return view, nil
}

// UpdateProfileInput holds the client-editable profile fields. Pointer fields
// distinguish "leave unchanged" (nil) from "set to empty". ID, username,
// email, and the counters are not client-assignable.
type UpdateProfileInput struct {
	DisplayName   *string `json:"displayName"`
	AvatarURL     *string `json:"avatarUrl"`
	Bio           *string `json:"bio"`
	Website       *string `json:"website"`
	Location      *string `json:"location"`
	Constellation *string `json:"constellation"`
}

// UpdateProfile applies partial updates to the caller's own row. Restricting
// the target to userID makes editing someone else's profile unrepresentable.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*model.Profile, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to edit your profile")
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, apperror.ValidationFailed("displayName", "display name must not be empty")
		}
		profile.DisplayName = name
	}
	if input.AvatarURL != nil {
		profile.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}
	if input.Bio != nil {
		profile.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.Website != nil {
		profile.Website = strings.TrimSpace(*input.Website)
	}
	if input.Location != nil {
		profile.Location = strings.TrimSpace(*input.Location)
	}
	if input.Constellation != nil {
		profile.Constellation = strings.TrimSpace(*input.Constellation)
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("service/profile: updating profile: %w", err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))

	return s.profiles.GetByID(ctx, userID)
}
