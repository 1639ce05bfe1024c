package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/model"
	"github.com/sakif/pulse/internal/repository"
)

// ProfileDB implements repository.ProfileRepository.
type ProfileDB struct {
	conn *sql.DB
}

// Profiles returns the profile repository backed by this database.
func (db *DB) Profiles() *ProfileDB {
	return &ProfileDB{conn: db.conn}
}

var _ repository.ProfileRepository = (*ProfileDB)(nil)

const profileColumns = `id, username, display_name, email, google_id, password_hash,
	avatar_url, bio, website, location, verified, level, energy, constellation,
	followers_count, following_count, posts_count, created_at, updated_at`

// Create inserts a new profile. An empty ID is filled with a generated xid.
// Unique violations on username or email surface as apperror.ErrConflict.
func (r *ProfileDB) Create(ctx context.Context, p *model.Profile) error {
	if p.ID == "" {
		p.ID = xid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Level == 0 {
		p.Level = 1
	}
	if p.Energy == 0 {
		p.Energy = 100
	}

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO profiles (id, username, display_name, email, google_id, password_hash,
			avatar_url, bio, website, location, verified, level, energy, constellation,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Username, p.DisplayName, p.Email, p.GoogleID, p.PasswordHash,
		p.AvatarURL, p.Bio, p.Website, p.Location, p.Verified, p.Level, p.Energy,
		p.Constellation, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("profile", p.Username)
		}
		return fmt.Errorf("sqlite: inserting profile %s: %w", p.ID, err)
	}
	return nil
}

// GetByID retrieves a profile by its ID.
// Returns apperror.ErrNotFound if no profile exists with that ID.
func (r *ProfileDB) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	return r.get(ctx, "id", id)
}

// GetByEmail retrieves a profile by email (credential sign-in path).
func (r *ProfileDB) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return r.get(ctx, "email", email)
}

// GetByGoogleID retrieves a profile by its Google subject ID (OAuth path).
func (r *ProfileDB) GetByGoogleID(ctx context.Context, googleID string) (*model.Profile, error) {
	return r.get(ctx, "google_id", googleID)
}

func (r *ProfileDB) get(ctx context.Context, column, value string) (*model.Profile, error) {
	var p model.Profile
	err := r.conn.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE `+column+` = ?`, value,
	).Scan(
		&p.ID, &p.Username, &p.DisplayName, &p.Email, &p.GoogleID, &p.PasswordHash,
		&p.AvatarURL, &p.Bio, &p.Website, &p.Location, &p.Verified, &p.Level,
		&p.Energy, &p.Constellation,
		&p.FollowersCount, &p.FollowingCount, &p.PostsCount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", value)
		}
		return nil, fmt.Errorf("sqlite: getting profile by %s %s: %w", column, value, err)
	}
	return &p, nil
}

// UsernameTaken reports whether a profile already uses the given username.
func (r *ProfileDB) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM profiles WHERE username = ?`, username,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking username %s: %w", username, err)
	}
	return count > 0, nil
}

// Update writes the mutable profile fields plus google_id, which changes
// once when a credential account is linked to a Google identity. The id,
// username, email, password hash, and counters are not part of the
// statement; counters belong to the triggers and identity never changes.
func (r *ProfileDB) Update(ctx context.Context, p *model.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.conn.ExecContext(ctx,
		`UPDATE profiles SET display_name = ?, avatar_url = ?, bio = ?, website = ?,
			location = ?, constellation = ?, energy = ?, level = ?, google_id = ?,
			updated_at = ?
		 WHERE id = ?`,
		p.DisplayName, p.AvatarURL, p.Bio, p.Website, p.Location,
		p.Constellation, p.Energy, p.Level, p.GoogleID, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating profile %s: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating profile %s: %w", p.ID, err)
	}
	if n == 0 {
		return apperror.NotFound("profile", p.ID)
	}
	return nil
}

// isUniqueViolation detects SQLite unique-constraint failures. modernc's
// error type is internal, so we match on the message the way the driver
// renders it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
