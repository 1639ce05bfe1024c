// Package sqlite implements the repository interfaces on an embedded SQLite
// database (modernc.org/sqlite — pure Go, no CGo).
//
// The schema is the authoritative enforcement layer for the domain's
// uniqueness and integrity rules: one like per (user, target), one follow per
// (follower, following), one conversation per participant pair, no
// self-follow, mood/dimension restricted to their closed sets. The service
// layer validates the same rules up front for better error messages, but the
// constraints here are what make concurrent writers safe.
//
// Denormalized counters (post like/comment counts, profile follower/
// following/post counts) and conversations.last_message_at are maintained by
// triggers, so readers never aggregate and writers can't forget to bump them.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface in the repository package.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time, and the PRAGMAs below are
	// per-connection. A single pooled connection keeps both consistent,
	// and keeps ":memory:" databases from splitting across connections.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads during writes; foreign keys are off by
	// default in SQLite and all our referential rules depend on them.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id              TEXT PRIMARY KEY,
			username        TEXT NOT NULL UNIQUE,
			display_name    TEXT NOT NULL,
			email           TEXT NOT NULL DEFAULT '',
			google_id       TEXT NOT NULL DEFAULT '',
			password_hash   TEXT NOT NULL DEFAULT '',
			avatar_url      TEXT NOT NULL DEFAULT '',
			bio             TEXT NOT NULL DEFAULT '',
			website         TEXT NOT NULL DEFAULT '',
			location        TEXT NOT NULL DEFAULT '',
			verified        INTEGER NOT NULL DEFAULT 0,
			level           INTEGER NOT NULL DEFAULT 1,
			energy          INTEGER NOT NULL DEFAULT 100,
			constellation   TEXT NOT NULL DEFAULT '',
			followers_count INTEGER NOT NULL DEFAULT 0,
			following_count INTEGER NOT NULL DEFAULT 0,
			posts_count     INTEGER NOT NULL DEFAULT 0,
			created_at      DATETIME NOT NULL,
			updated_at      DATETIME NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_email
			ON profiles(email) WHERE email <> '';
		CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_google_id
			ON profiles(google_id) WHERE google_id <> '';
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL REFERENCES profiles(id),
			content        TEXT NOT NULL CHECK (length(content) > 0),
			media_urls     TEXT NOT NULL DEFAULT '[]',
			mood           TEXT NOT NULL CHECK (mood IN ('spark','flow','storm','calm','burst')),
			dimension      TEXT NOT NULL CHECK (dimension IN ('personal','creative','tech','nature','cosmic')),
			likes_count    INTEGER NOT NULL DEFAULT 0,
			comments_count INTEGER NOT NULL DEFAULT 0,
			reposts_count  INTEGER NOT NULL DEFAULT 0,
			created_at     DATETIME NOT NULL,
			updated_at     DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id          TEXT PRIMARY KEY,
			post_id     TEXT NOT NULL REFERENCES posts(id),
			user_id     TEXT NOT NULL REFERENCES profiles(id),
			parent_id   TEXT REFERENCES comments(id),
			content     TEXT NOT NULL CHECK (length(content) > 0),
			likes_count INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments(post_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	// A like targets exactly one of a post or a comment. The partial unique
	// indexes make (user, target) unique — plain UNIQUE(user_id, post_id)
	// would not work because SQLite treats NULLs as distinct.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS likes (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES profiles(id),
			post_id    TEXT REFERENCES posts(id),
			comment_id TEXT REFERENCES comments(id),
			created_at DATETIME NOT NULL,
			CHECK ((post_id IS NULL) <> (comment_id IS NULL))
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_post
			ON likes(user_id, post_id) WHERE post_id IS NOT NULL;
		CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_comment
			ON likes(user_id, comment_id) WHERE comment_id IS NOT NULL;
	`)
	if err != nil {
		return fmt.Errorf("creating likes table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS follows (
			id           TEXT PRIMARY KEY,
			follower_id  TEXT NOT NULL REFERENCES profiles(id),
			following_id TEXT NOT NULL REFERENCES profiles(id),
			created_at   DATETIME NOT NULL,
			CHECK (follower_id <> following_id),
			UNIQUE (follower_id, following_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating follows table: %w", err)
	}

	// Participant pairs are stored ordered so the UNIQUE constraint gives one
	// conversation per unordered pair.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS conversations (
			id              TEXT PRIMARY KEY,
			participant_1   TEXT NOT NULL REFERENCES profiles(id),
			participant_2   TEXT NOT NULL REFERENCES profiles(id),
			last_message_at DATETIME NOT NULL,
			created_at      DATETIME NOT NULL,
			CHECK (participant_1 < participant_2),
			UNIQUE (participant_1, participant_2)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating conversations table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id              TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL REFERENCES conversations(id),
			sender_id       TEXT NOT NULL REFERENCES profiles(id),
			content         TEXT NOT NULL CHECK (length(content) > 0),
			read_at         DATETIME,
			created_at      DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_conv_created ON messages(conversation_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}

	if err := db.createTriggers(); err != nil {
		return fmt.Errorf("creating triggers: %w", err)
	}

	return nil
}

// createTriggers installs the counter and last-activity triggers. All are
// idempotent (CREATE TRIGGER IF NOT EXISTS) so migrate is safe to re-run.
func (db *DB) createTriggers() error {
	_, err := db.conn.Exec(`
		CREATE TRIGGER IF NOT EXISTS trg_posts_count_ins AFTER INSERT ON posts BEGIN
			UPDATE profiles SET posts_count = posts_count + 1 WHERE id = NEW.user_id;
		END;
		CREATE TRIGGER IF NOT EXISTS trg_posts_count_del AFTER DELETE ON posts BEGIN
			UPDATE profiles SET posts_count = posts_count - 1 WHERE id = OLD.user_id;
		END;

		CREATE TRIGGER IF NOT EXISTS trg_likes_ins AFTER INSERT ON likes BEGIN
			UPDATE posts SET likes_count = likes_count + 1
				WHERE id = NEW.post_id AND NEW.post_id IS NOT NULL;
			UPDATE comments SET likes_count = likes_count + 1
				WHERE id = NEW.comment_id AND NEW.comment_id IS NOT NULL;
		END;
		CREATE TRIGGER IF NOT EXISTS trg_likes_del AFTER DELETE ON likes BEGIN
			UPDATE posts SET likes_count = likes_count - 1
				WHERE id = OLD.post_id AND OLD.post_id IS NOT NULL;
			UPDATE comments SET likes_count = likes_count - 1
				WHERE id = OLD.comment_id AND OLD.comment_id IS NOT NULL;
		END;

		CREATE TRIGGER IF NOT EXISTS trg_comments_ins AFTER INSERT ON comments BEGIN
			UPDATE posts SET comments_count = comments_count + 1 WHERE id = NEW.post_id;
		END;
		CREATE TRIGGER IF NOT EXISTS trg_comments_del AFTER DELETE ON comments BEGIN
			UPDATE posts SET comments_count = comments_count - 1 WHERE id = OLD.post_id;
		END;

		CREATE TRIGGER IF NOT EXISTS trg_follows_ins AFTER INSERT ON follows BEGIN
			UPDATE profiles SET followers_count = followers_count + 1 WHERE id = NEW.following_id;
			UPDATE profiles SET following_count = following_count + 1 WHERE id = NEW.follower_id;
		END;
		CREATE TRIGGER IF NOT EXISTS trg_follows_del AFTER DELETE ON follows BEGIN
			UPDATE profiles SET followers_count = followers_count - 1 WHERE id = OLD.following_id;
			UPDATE profiles SET following_count = following_count - 1 WHERE id = OLD.follower_id;
		END;

		CREATE TRIGGER IF NOT EXISTS trg_messages_activity AFTER INSERT ON messages BEGIN
			UPDATE conversations SET last_message_at = NEW.created_at WHERE id = NEW.conversation_id;
		END;
	`)
	return err
}
