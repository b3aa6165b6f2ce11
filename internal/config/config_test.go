package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Env = %q, want %q", cfg.Env, EnvDevelopment)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "text")
	}
	if cfg.SanctoralSource != SourceDatabase || !cfg.UsesDatabase() {
		t.Errorf("SanctoralSource = %q, want %q", cfg.SanctoralSource, SourceDatabase)
	}
	if cfg.RangeLimit != 366 {
		t.Errorf("RangeLimit = %d, want 366", cfg.RangeLimit)
	}
	if cfg.ResolveWorkers != 8 {
		t.Errorf("ResolveWorkers = %d, want 8", cfg.ResolveWorkers)
	}
	if cfg.SnapshotCron != "" {
		t.Errorf("SnapshotCron = %q, want disabled", cfg.SnapshotCron)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv()

	os.Setenv("PORT", "3000")
	os.Setenv("ENV", "production")
	os.Setenv("DATABASE_PATH", "/data/test.db")
	os.Setenv("API_KEY", "secret-key-123")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	os.Setenv("SANCTORAL_SOURCE", "builtin")
	os.Setenv("RANGE_LIMIT", "31")
	os.Setenv("RESOLVE_WORKERS", "2")
	os.Setenv("SNAPSHOT_YEARS_AHEAD", "3")
	defer clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Env = %q, want %q", cfg.Env, EnvProduction)
	}
	if cfg.DatabasePath != "/data/test.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "/data/test.db")
	}
	if cfg.APIKey != "secret-key-123" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "secret-key-123")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "json")
	}
	if cfg.UsesDatabase() {
		t.Error("UsesDatabase() = true with builtin source")
	}
	if cfg.RangeLimit != 31 || cfg.ResolveWorkers != 2 || cfg.SnapshotYearsAhead != 3 {
		t.Errorf("RangeLimit/ResolveWorkers/SnapshotYearsAhead = %d/%d/%d, want 31/2/3",
			cfg.RangeLimit, cfg.ResolveWorkers, cfg.SnapshotYearsAhead)
	}
}

func TestLoad_InvalidCron(t *testing.T) {
	clearEnv()
	os.Setenv("SNAPSHOT_CRON", "every tuesday")
	defer clearEnv()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "SNAPSHOT_CRON") {
		t.Errorf("Load() error = %v, want SNAPSHOT_CRON error", err)
	}
}

// validConfig returns a development config that passes Validate.
func validConfig() Config {
	return Config{
		Port:               8080,
		Env:                EnvDevelopment,
		DatabasePath:       "./data/test.db",
		LogLevel:           "info",
		LogFormat:          "text",
		SanctoralSource:    SourceDatabase,
		RangeLimit:         366,
		ResolveWorkers:     8,
		SnapshotYearsAhead: 1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"valid production config", func(c *Config) {
			c.Env = EnvProduction
			c.APIKey = "required-in-prod"
			c.LogFormat = "json"
		}, false},
		{"production requires API key", func(c *Config) { c.Env = EnvProduction }, true},
		{"invalid port - too low", func(c *Config) { c.Port = 0 }, true},
		{"invalid port - too high", func(c *Config) { c.Port = 70000 }, true},
		{"invalid environment", func(c *Config) { c.Env = "invalid" }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"invalid log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }, true},
		{"builtin source needs no database", func(c *Config) {
			c.SanctoralSource = SourceBuiltin
			c.DatabasePath = ""
		}, false},
		{"unknown sanctoral source", func(c *Config) { c.SanctoralSource = "yaml" }, true},
		{"zero range limit", func(c *Config) { c.RangeLimit = 0 }, true},
		{"zero workers", func(c *Config) { c.ResolveWorkers = 0 }, true},
		{"valid cron", func(c *Config) { c.SnapshotCron = "0 3 * * *" }, false},
		{"cron descriptor", func(c *Config) { c.SnapshotCron = "@daily" }, false},
		{"invalid cron", func(c *Config) { c.SnapshotCron = "61 * * * *" }, true},
		{"cron with builtin source", func(c *Config) {
			c.SnapshotCron = "@weekly"
			c.SanctoralSource = SourceBuiltin
		}, true},
		{"years ahead out of range", func(c *Config) { c.SnapshotYearsAhead = 11 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_JoinsErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = 0
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "PORT") || !strings.Contains(msg, "LOG_LEVEL") {
		t.Errorf("Validate() = %q, want both PORT and LOG_LEVEL reported", msg)
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Env: EnvDevelopment}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}

	cfg.Env = EnvProduction
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{Env: EnvProduction}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}

	cfg.Env = EnvDevelopment
	if cfg.IsProduction() {
		t.Error("IsProduction() = true, want false")
	}
}

// clearEnv removes all config-related environment variables
func clearEnv() {
	vars := []string{
		"PORT", "ENV", "DATABASE_PATH", "API_KEY",
		"LOG_LEVEL", "LOG_FORMAT",
		"SANCTORAL_SOURCE", "RANGE_LIMIT", "RESOLVE_WORKERS",
		"SNAPSHOT_CRON", "SNAPSHOT_YEARS_AHEAD",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
