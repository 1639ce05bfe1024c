// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start. All fields come from
// environment variables; Load fills in defaults for the optional ones.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// Google OAuth. Empty client ID disables the /auth/google routes.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// AllowedOrigins is the CORS allowlist, comma-separated in the env.
	AllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win over
// it. Returns an error if a required variable is missing.
func Load() (*Config, error) {
	// godotenv.Load never overrides variables already set in the
	// environment, so production deployments are unaffected.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getenv("PORT", "8080"),
		DBPath:             getenv("DB_PATH", "pulse.db"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  getenv("GOOGLE_CALLBACK_URL", "http://localhost:8080/auth/google/callback"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}

	return cfg, nil
}

// GoogleEnabled reports whether OAuth sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
