package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/model"
)

func TestProfileCreate(t *testing.T) {
	db := newTestDB(t)

	p := &model.Profile{
		Username:    "nova",
		DisplayName: "Nova",
		Email:       "nova@example.com",
	}
	if err := db.Profiles().Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if p.ID == "" {
		t.Error("Create() did not set profile.ID")
	}
	if p.CreatedAt.IsZero() {
		t.Error("Create() did not set profile.CreatedAt")
	}
	if p.Level != 1 {
		t.Errorf("Create() level = %d, want default 1", p.Level)
	}
	if p.Energy != 100 {
		t.Errorf("Create() energy = %d, want default 100", p.Energy)
	}
}

func TestProfileCreate_KeepsProvidedID(t *testing.T) {
	db := newTestDB(t)

	p := &model.Profile{ID: "fixed-id", Username: "nova", DisplayName: "Nova"}
	if err := db.Profiles().Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.ID != "fixed-id" {
		t.Errorf("Create() overwrote provided ID, got %q", p.ID)
	}
}

func TestProfileCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestProfile(t, db, "nova")

	dup := &model.Profile{Username: "nova", DisplayName: "Other", Email: "other@example.com"}
	err := db.Profiles().Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}
}

func TestProfileCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestProfile(t, db, "nova")

	dup := &model.Profile{Username: "other", DisplayName: "Other", Email: "nova@example.com"}
	err := db.Profiles().Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}
}

func TestProfileCreate_EmptyEmailNotUnique(t *testing.T) {
	db := newTestDB(t)

	// OAuth-less accounts without email must not collide with each other;
	// the unique index only covers non-empty emails.
	a := &model.Profile{Username: "one", DisplayName: "One"}
	b := &model.Profile{Username: "two", DisplayName: "Two"}
	if err := db.Profiles().Create(context.Background(), a); err != nil {
		t.Fatalf("Create(a) error = %v", err)
	}
	if err := db.Profiles().Create(context.Background(), b); err != nil {
		t.Fatalf("Create(b) error = %v", err)
	}
}

func TestProfileGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestProfile(t, db, "nova")

	got, err := db.Profiles().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "nova" {
		t.Errorf("GetByID() username = %q, want %q", got.Username, "nova")
	}
}

func TestProfileGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Profiles().GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestProfileGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestProfile(t, db, "nova")

	got, err := db.Profiles().GetByEmail(context.Background(), "nova@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() id = %q, want %q", got.ID, created.ID)
	}
}

func TestProfileGetByGoogleID(t *testing.T) {
	db := newTestDB(t)

	p := &model.Profile{Username: "nova", DisplayName: "Nova", GoogleID: "google-sub-1"}
	if err := db.Profiles().Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := db.Profiles().GetByGoogleID(context.Background(), "google-sub-1")
	if err != nil {
		t.Fatalf("GetByGoogleID() error = %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("GetByGoogleID() id = %q, want %q", got.ID, p.ID)
	}
}

func TestProfileUsernameTaken(t *testing.T) {
	db := newTestDB(t)
	createTestProfile(t, db, "nova")

	taken, err := db.Profiles().UsernameTaken(context.Background(), "nova")
	if err != nil {
		t.Fatalf("UsernameTaken() error = %v", err)
	}
	if !taken {
		t.Error("UsernameTaken(nova) = false, want true")
	}

	taken, err = db.Profiles().UsernameTaken(context.Background(), "free")
	if err != nil {
		t.Fatalf("UsernameTaken() error = %v", err)
	}
	if taken {
		t.Error("UsernameTaken(free) = true, want false")
	}
}

func TestProfileUpdate(t *testing.T) {
	db := newTestDB(t)
	p := createTestProfile(t, db, "nova")

	p.Bio = "stargazer"
	p.Location = "orbit"
	p.Constellation = "lyra"
	if err := db.Profiles().Update(context.Background(), p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.Profiles().GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Bio != "stargazer" || got.Location != "orbit" || got.Constellation != "lyra" {
		t.Errorf("Update() not persisted: bio=%q location=%q constellation=%q",
			got.Bio, got.Location, got.Constellation)
	}
}

func TestProfileUpdate_LinksGoogleID(t *testing.T) {
	db := newTestDB(t)
	p := createTestProfile(t, db, "nova")

	p.GoogleID = "google-sub-9"
	if err := db.Profiles().Update(context.Background(), p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.Profiles().GetByGoogleID(context.Background(), "google-sub-9")
	if err != nil {
		t.Fatalf("GetByGoogleID() after link error = %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("linked profile id = %q, want %q", got.ID, p.ID)
	}
}

func TestProfileUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Profiles().Update(context.Background(), &model.Profile{ID: "missing"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}
