// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Database
	DatabasePath string // Path to SQLite file

	// Authentication
	APIKey string // API key for admin endpoints

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Calendar
	SanctoralSource string // database, builtin
	RangeLimit      int    // Max days per range request
	ResolveWorkers  int    // Concurrent date resolutions per range

	// Snapshots
	SnapshotCron       string // Standard cron spec; empty disables the job
	SnapshotYearsAhead int    // Years past the current one to snapshot
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Sanctoral sources
const (
	SourceDatabase = "database"
	SourceBuiltin  = "builtin"
)

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// No-op in production where env vars are set directly
	_ = godotenv.Load()

	cfg := &Config{}

	// Server settings
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Database
	cfg.DatabasePath = getEnv("DATABASE_PATH", "./data/churchyear.db")

	// Authentication
	cfg.APIKey = getEnv("API_KEY", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	// Calendar
	cfg.SanctoralSource = getEnv("SANCTORAL_SOURCE", SourceDatabase)
	cfg.RangeLimit = getEnvInt("RANGE_LIMIT", 366)
	cfg.ResolveWorkers = getEnvInt("RESOLVE_WORKERS", 8)

	// Snapshots
	cfg.SnapshotCron = getEnv("SNAPSHOT_CRON", "")
	cfg.SnapshotYearsAhead = getEnvInt("SNAPSHOT_YEARS_AHEAD", 1)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	if c.DatabasePath == "" && c.SanctoralSource == SourceDatabase {
		errs = append(errs, errors.New("DATABASE_PATH is required when SANCTORAL_SOURCE is database"))
	}

	// Admin endpoints stay closed without a key, but production must set one.
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	switch c.SanctoralSource {
	case SourceDatabase, SourceBuiltin:
	default:
		errs = append(errs, fmt.Errorf("SANCTORAL_SOURCE must be one of: database, builtin; got %q", c.SanctoralSource))
	}

	if c.RangeLimit < 1 {
		errs = append(errs, fmt.Errorf("RANGE_LIMIT must be positive, got %d", c.RangeLimit))
	}
	if c.ResolveWorkers < 1 {
		errs = append(errs, fmt.Errorf("RESOLVE_WORKERS must be positive, got %d", c.ResolveWorkers))
	}

	if c.SnapshotCron != "" {
		if _, err := cron.ParseStandard(c.SnapshotCron); err != nil {
			errs = append(errs, fmt.Errorf("SNAPSHOT_CRON %q: %w", c.SnapshotCron, err))
		}
		if c.SanctoralSource != SourceDatabase {
			errs = append(errs, errors.New("SNAPSHOT_CRON needs SANCTORAL_SOURCE=database"))
		}
	}
	if c.SnapshotYearsAhead < 0 || c.SnapshotYearsAhead > 10 {
		errs = append(errs, fmt.Errorf("SNAPSHOT_YEARS_AHEAD must be between 0 and 10, got %d", c.SnapshotYearsAhead))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// UsesDatabase reports whether the sanctorale is read from SQLite.
func (c *Config) UsesDatabase() bool {
	return c.SanctoralSource == SourceDatabase
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
