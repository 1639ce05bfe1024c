// Package service holds the business logic between the HTTP handlers and the
// repositories. Each service owns one area (sessions, feed, social graph,
// messaging, profiles), takes its dependencies through its constructor, and
// is written against the repository interfaces so tests can substitute mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/auth"
	"github.com/sakif/pulse/internal/model"
	"github.com/sakif/pulse/internal/repository"
)

// SessionService owns sign-up, sign-in, and the OAuth bootstrap path.
type SessionService struct {
	profiles  repository.ProfileRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewSessionService(
	profiles repository.ProfileRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		profiles:  profiles,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the profile and the issued JWT so the handler can set
// the cookie and respond in one step.
type AuthResult struct {
	Profile *model.Profile
	Token   string
}

// SignUp creates a credential-backed account. Email and username are unique;
// a clash surfaces as a Conflict error.
func (s *SessionService) SignUp(ctx context.Context, email, password, username, displayName string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < 8 {
		return nil, apperror.ValidationFailed("password", "password must be at least 8 characters")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	id := xid.New().String()
	if username = sanitizeUsername(username); username == "" {
		username, err = s.deriveUsername(ctx, email, id)
		if err != nil {
			return nil, err
		}
	}
	if displayName == "" {
		displayName = username
	}

	profile := &model.Profile{
		ID:           id,
		Username:     username,
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("service/session: creating profile: %w", err)
	}

	s.logger.Info("account created",
		slog.String("userID", profile.ID),
		slog.String("username", profile.Username),
	)

	return s.issue(profile)
}

// SignIn verifies email/password credentials. Wrong email and wrong password
// both return the same Unauthorized error, so the response doesn't reveal
// which accounts exist.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service/session: looking up profile: %w", err)
	}
	if profile.PasswordHash == "" {
		// OAuth-only account; there is no password to check.
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if err := s.passwords.Verify(profile.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	return s.issue(profile)
}

// LoginOrRegisterGoogle handles the OAuth callback: bootstrap the profile row
// for the Google identity and issue a session token.
func (s *SessionService) LoginOrRegisterGoogle(ctx context.Context, gu *auth.GoogleUser) (*AuthResult, error) {
	if gu == nil {
		return nil, fmt.Errorf("service/session: google user must not be nil")
	}

	profile, err := s.BootstrapProfile(ctx, gu)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user authenticated via google",
		slog.String("userID", profile.ID),
		slog.String("username", profile.Username),
	)

	return s.issue(profile)
}

// BootstrapProfile finds or creates the profile row for a Google identity.
// Idempotent: a second call for the same identity returns the existing row.
// An existing credential account with the same email is linked rather than
// duplicated.
func (s *SessionService) BootstrapProfile(ctx context.Context, gu *auth.GoogleUser) (*model.Profile, error) {
	profile, err := s.profiles.GetByGoogleID(ctx, gu.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/session: looking up google identity: %w", err)
	}

	if gu.Email != "" {
		existing, err := s.profiles.GetByEmail(ctx, strings.ToLower(gu.Email))
		if err == nil {
			existing.GoogleID = gu.ID
			if existing.AvatarURL == "" {
				existing.AvatarURL = gu.Picture
			}
			if err := s.profiles.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("service/session: linking google identity: %w", err)
			}
			return existing, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/session: looking up email: %w", err)
		}
	}

	id := xid.New().String()
	username, err := s.deriveUsername(ctx, gu.Email, id)
	if err != nil {
		return nil, err
	}
	displayName := gu.Name
	if displayName == "" {
		displayName = username
	}

	profile = &model.Profile{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		Email:       strings.ToLower(gu.Email),
		AvatarURL:   gu.Picture,
		GoogleID:    gu.ID,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("service/session: bootstrapping profile: %w", err)
	}

	s.logger.Info("profile bootstrapped",
		slog.String("userID", profile.ID),
		slog.String("username", profile.Username),
	)
	return profile, nil
}

// GetProfileByID loads a profile. Used by /api/me and as the auth state's
// profile loader.
func (s *SessionService) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *SessionService) issue(profile *model.Profile) (*AuthResult, error) {
	token, err := s.tokens.Generate(profile.ID)
	if err != nil {
		return nil, fmt.Errorf("service/session: generating token for %s: %w", profile.ID, err)
	}
	return &AuthResult{Profile: profile, Token: token}, nil
}

// deriveUsername builds a username from the email local-part, falling back to
// user_<id8>. On collision a short suffix from the new row's ID is appended,
// which is unique enough in practice since the base already rarely collides.
func (s *SessionService) deriveUsername(ctx context.Context, email, id string) (string, error) {
	base := ""
	if at := strings.Index(email, "@"); at > 0 {
		base = sanitizeUsername(email[:at])
	}
	if base == "" {
		base = "user_" + id[:8]
	}

	taken, err := s.profiles.UsernameTaken(ctx, base)
	if err != nil {
		return "", fmt.Errorf("service/session: checking username: %w", err)
	}
	if !taken {
		return base, nil
	}
	return base + "_" + id[len(id)-4:], nil
}

// sanitizeUsername lowercases and strips everything outside [a-z0-9_].
func sanitizeUsername(username string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(username)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
