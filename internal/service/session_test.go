package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/auth"
)

func TestSignUp(t *testing.T) {
	svc, _ := newTestSessionService(t)

	result, err := svc.SignUp(context.Background(), "nova@example.com", "password123", "nova", "Nova")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if result.Token == "" {
		t.Error("SignUp() did not issue a token")
	}
	if result.Profile.Username != "nova" {
		t.Errorf("SignUp() username = %q, want %q", result.Profile.Username, "nova")
	}
	if result.Profile.PasswordHash == "" {
		t.Error("SignUp() did not store a password hash")
	}
}

func TestSignUp_DerivesUsernameFromEmail(t *testing.T) {
	svc, _ := newTestSessionService(t)

	result, err := svc.SignUp(context.Background(), "Star.Gazer@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	// Local-part lowercased with non [a-z0-9_] stripped.
	if result.Profile.Username != "stargazer" {
		t.Errorf("SignUp() username = %q, want %q", result.Profile.Username, "stargazer")
	}
	if result.Profile.DisplayName != "stargazer" {
		t.Errorf("SignUp() displayName = %q, want the derived username", result.Profile.DisplayName)
	}
}

func TestSignUp_InvalidInput(t *testing.T) {
	svc, _ := newTestSessionService(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "password123"},
		{"email without at", "not-an-email", "password123"},
		{"short password", "nova@example.com", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(context.Background(), tt.email, tt.password, "", "")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("SignUp() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	svc, _ := newTestSessionService(t)
	if _, err := svc.SignUp(context.Background(), "nova@example.com", "password123", "nova", ""); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	result, err := svc.SignIn(context.Background(), "nova@example.com", "password123")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if result.Profile.Username != "nova" {
		t.Errorf("SignIn() username = %q, want %q", result.Profile.Username, "nova")
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestSignIn_BadCredentials(t *testing.T) {
	svc, _ := newTestSessionService(t)
	if _, err := svc.SignUp(context.Background(), "nova@example.com", "password123", "nova", ""); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	_, wrongPass := svc.SignIn(context.Background(), "nova@example.com", "wrong-password")
	_, unknownEmail := svc.SignIn(context.Background(), "ghost@example.com", "password123")

	if !errors.Is(wrongPass, apperror.ErrUnauthorized) {
		t.Errorf("SignIn() wrong password error = %v, want ErrUnauthorized", wrongPass)
	}
	if !errors.Is(unknownEmail, apperror.ErrUnauthorized) {
		t.Errorf("SignIn() unknown email error = %v, want ErrUnauthorized", unknownEmail)
	}
	if wrongPass.Error() != unknownEmail.Error() {
		t.Errorf("error messages differ: %q vs %q", wrongPass, unknownEmail)
	}
}

func TestBootstrapProfile_CreatesOnce(t *testing.T) {
	svc, profiles := newTestSessionService(t)
	gu := &auth.GoogleUser{ID: "google-sub-1", Email: "nova@example.com", Name: "Nova", Picture: "https://p.example/a.png"}

	first, err := svc.BootstrapProfile(context.Background(), gu)
	if err != nil {
		t.Fatalf("first BootstrapProfile() error = %v", err)
	}
	second, err := svc.BootstrapProfile(context.Background(), gu)
	if err != nil {
		t.Fatalf("second BootstrapProfile() error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("bootstrap not idempotent: ids %q and %q", first.ID, second.ID)
	}
	if len(profiles.profiles) != 1 {
		t.Errorf("bootstrap created %d rows, want 1", len(profiles.profiles))
	}
	if first.Username != "nova" {
		t.Errorf("bootstrap username = %q, want %q", first.Username, "nova")
	}
	if first.DisplayName != "Nova" {
		t.Errorf("bootstrap displayName = %q, want the Google name", first.DisplayName)
	}
	if first.AvatarURL != gu.Picture {
		t.Errorf("bootstrap avatarURL = %q, want the Google picture", first.AvatarURL)
	}
}

func TestBootstrapProfile_LinksExistingEmailAccount(t *testing.T) {
	svc, profiles := newTestSessionService(t)
	signedUp, err := svc.SignUp(context.Background(), "nova@example.com", "password123", "nova", "")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	gu := &auth.GoogleUser{ID: "google-sub-1", Email: "nova@example.com", Name: "Nova"}
	linked, err := svc.BootstrapProfile(context.Background(), gu)
	if err != nil {
		t.Fatalf("BootstrapProfile() error = %v", err)
	}

	if linked.ID != signedUp.Profile.ID {
		t.Errorf("linked id = %q, want the existing account %q", linked.ID, signedUp.Profile.ID)
	}
	if linked.GoogleID != "google-sub-1" {
		t.Errorf("linked googleID = %q, want %q", linked.GoogleID, "google-sub-1")
	}
	if len(profiles.profiles) != 1 {
		t.Errorf("linking created %d rows, want 1", len(profiles.profiles))
	}
}

func TestBootstrapProfile_UsernameCollisionGetsSuffix(t *testing.T) {
	svc, _ := newTestSessionService(t)
	if _, err := svc.SignUp(context.Background(), "nova@first.example", "password123", "nova", ""); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	gu := &auth.GoogleUser{ID: "google-sub-2", Email: "nova@second.example", Name: "Other Nova"}
	profile, err := svc.BootstrapProfile(context.Background(), gu)
	if err != nil {
		t.Fatalf("BootstrapProfile() error = %v", err)
	}

	if profile.Username == "nova" {
		t.Fatal("collision not resolved: username still \"nova\"")
	}
	if len(profile.Username) != len("nova")+5 {
		t.Errorf("username = %q, want \"nova\" plus a _xxxx suffix", profile.Username)
	}
}

func TestBootstrapProfile_NoEmailFallsBackToUserID(t *testing.T) {
	svc, _ := newTestSessionService(t)

	gu := &auth.GoogleUser{ID: "google-sub-3"}
	profile, err := svc.BootstrapProfile(context.Background(), gu)
	if err != nil {
		t.Fatalf("BootstrapProfile() error = %v", err)
	}
	if len(profile.Username) != len("user_")+8 {
		t.Errorf("username = %q, want user_<id8>", profile.Username)
	}
}
