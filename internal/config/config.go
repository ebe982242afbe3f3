// Package config handles loading and validating runtime configuration for the disc golf API.
// Configuration values (database URL, port, JWT secret, feed sizes) are read from environment
// variables rather than being hardcoded, so the same binary runs in dev, staging and production
// with nothing but a different environment.
package config

import (
	"fmt"
	"log"
	"strings"

	// godotenv reads a .env file and loads its key=value pairs into the process environment.
	// In production there is usually no .env file and real env vars are used instead.
	"github.com/joho/godotenv"
	// viper layers defaults under environment variables and does the type conversion for us.
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port        string // TCP port the HTTP server listens on (e.g. "8080")
	Env         string // "development", "staging" or "production"
	DatabaseURL string // PostgreSQL connection string

	// JWTSecret verifies the HS256 access tokens issued by the auth provider (Supabase).
	JWTSecret string
	// SessionCookie is the cookie that carries the access token for browser clients.
	SessionCookie string

	MigrationsPath string   // Directory holding golang-migrate .sql files
	FeedLimit      int      // N for the "latest N" feeds on the dashboard
	LatestMode     string   // Default meaning of "latest" in the per-course score feed
	CORSOrigins    []string // Allowed CORS origins; "*" allows all
	LogLevel       string   // zap level name: debug, info, warn, error
}

// Load reads configuration from a .env file (if present) and then from environment
// variables. Environment variables always win over .env values and defaults.
func Load() *Config {
	// Missing .env is fine in production; real environment variables are already set.
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("SESSION_COOKIE", "sb-access-token")
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("FEED_LIMIT", 5)
	v.SetDefault("LATEST_SCORE_MODE", "played")
	v.SetDefault("CORS_ORIGINS", "*")

	cfg := &Config{
		Port:           v.GetString("PORT"),
		Env:            v.GetString("ENV"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		JWTSecret:      v.GetString("SUPABASE_JWT_SECRET"),
		SessionCookie:  v.GetString("SESSION_COOKIE"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		FeedLimit:      v.GetInt("FEED_LIMIT"),
		LatestMode:     v.GetString("LATEST_SCORE_MODE"),
		CORSOrigins:    splitTrimmed(v.GetString("CORS_ORIGINS")),
		LogLevel:       v.GetString("LOG_LEVEL"),
	}

	// Development gets chattier logs unless LOG_LEVEL says otherwise.
	if cfg.LogLevel == "" {
		if cfg.IsDevelopment() {
			cfg.LogLevel = "debug"
		} else {
			cfg.LogLevel = "info"
		}
	}
	if cfg.FeedLimit <= 0 {
		cfg.FeedLimit = 5
	}

	return cfg
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate returns an error naming the first required setting that is missing.
// The JWT secret may be empty in development so the API can be explored read-only.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL must be set")
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("config: SUPABASE_JWT_SECRET must be set outside development")
	}
	switch c.LatestMode {
	case "played", "recorded", "earliest":
	default:
		return fmt.Errorf("config: LATEST_SCORE_MODE must be played, recorded or earliest, got %q", c.LatestMode)
	}
	return nil
}

// CORSAllowOrigins returns the origins in the comma-separated form fiber's cors middleware expects.
func (c *Config) CORSAllowOrigins() string {
	if len(c.CORSOrigins) == 0 {
		return "*"
	}
	return strings.Join(c.CORSOrigins, ",")
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
