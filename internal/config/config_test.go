package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "PORT", "TABLE_PREFIX", "SESSION_TTL", "CORS_ORIGINS", "DEBUG"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Environment != "dev" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "dev")
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("TablePrefix = %q, want %q", cfg.TablePrefix, "dev_")
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %s, want 24h", cfg.SessionTTL)
	}
	if cfg.CORSOrigins != "*" {
		t.Errorf("CORSOrigins = %q, want %q", cfg.CORSOrigins, "*")
	}
	if !cfg.Debug {
		t.Error("Debug should default to true outside prod")
	}
}

func TestGetTablePrefix(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		override string
		want     string
	}{
		{name: "prod", env: "prod", want: "prod_"},
		{name: "test", env: "test", want: "test_"},
		{name: "dev", env: "dev", want: "dev_"},
		{name: "unknown falls back to dev", env: "staging", want: "dev_"},
		{name: "override wins", env: "prod", override: "custom_", want: "custom_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TABLE_PREFIX", tt.override)
			if got := getTablePrefix(tt.env); got != tt.want {
				t.Errorf("getTablePrefix(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoad_ParsesNumbersAndDurations(t *testing.T) {
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("LOGIN_RATE_BURST", "12")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "not-a-number")

	cfg := Load()

	if cfg.SessionTTL != 90*time.Minute {
		t.Errorf("SessionTTL = %s, want 90m", cfg.SessionTTL)
	}
	if cfg.LoginRateBurst != 12 {
		t.Errorf("LoginRateBurst = %d, want 12", cfg.LoginRateBurst)
	}
	if cfg.LoginRatePerMinute != 5 {
		t.Errorf("LoginRatePerMinute = %d, want default 5", cfg.LoginRatePerMinute)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "LOGIN_RATE_PER_MINUTE") {
		t.Errorf("Validate() error = %v, want it to name LOGIN_RATE_PER_MINUTE", err)
	}
}

func TestValidate_RejectsMalformedSessionTTL(t *testing.T) {
	t.Setenv("ENVIRONMENT", "dev")
	t.Setenv("DATABASE_URL", "postgres://localhost/notes")
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("LOGIN_RATE_BURST", "")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "")
	t.Setenv("LOG_MAX_FILES", "")

	t.Setenv("SESSION_TTL", "24")
	err := Load().Validate()
	if err == nil || !strings.Contains(err.Error(), "SESSION_TTL") {
		t.Fatalf("Validate() error = %v, want it to name SESSION_TTL", err)
	}

	t.Setenv("SESSION_TTL", "24h")
	if err := Load().Validate(); err != nil {
		t.Fatalf("Validate() with a well-formed SESSION_TTL: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:               "8080",
			Environment:        "dev",
			DatabaseURL:        "postgres://localhost/notes",
			JWTSecret:          "dev-secret",
			SessionTTL:         time.Hour,
			LoginRateBurst:     5,
			LoginRatePerMinute: 5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing database url", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "short secret in prod", mutate: func(c *Config) { c.Environment = "prod" }, wantErr: true},
		{
			name: "long secret in prod",
			mutate: func(c *Config) {
				c.Environment = "prod"
				c.JWTSecret = "0123456789abcdef0123456789abcdef"
			},
		},
		{name: "ttl too short", mutate: func(c *Config) { c.SessionTTL = time.Second }, wantErr: true},
		{name: "unknown environment", mutate: func(c *Config) { c.Environment = "qa" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetupLogFile_PrunesOldFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"notesd-2020-01-01T00-00-00.log", "notesd-2020-01-02T00-00-00.log", "notesd-2020-01-03T00-00-00.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	f, err := SetupLogFile(dir, 2)
	if err != nil {
		t.Fatalf("SetupLogFile() error = %v", err)
	}
	defer f.Close()

	files, _ := filepath.Glob(filepath.Join(dir, "notesd-*.log"))
	if len(files) != 2 {
		t.Fatalf("log files = %d, want 2", len(files))
	}
	if _, err := os.Stat(filepath.Join(dir, "notesd-2020-01-01T00-00-00.log")); !os.IsNotExist(err) {
		t.Error("oldest log file should have been removed")
	}
}
