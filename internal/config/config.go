package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Session tokens
	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration
	JWKSURL    string // Optional external issuer; empty disables it
	// Login rate limiting (disabled when RedisURL is empty)
	RedisURL           string
	LoginRateBurst     int
	LoginRatePerMinute int
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool // Enables debug-level logging

	// Malformed numeric or duration variables, reported by Validate
	parseErrs []error
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	var errs []error

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		TablePrefix: tablePrefix,
		// Session tokens
		JWTSecret:  getEnv("JWT_SECRET", ""),
		JWTIssuer:  getEnv("JWT_ISSUER", "tenantnotes"),
		SessionTTL: getDuration("SESSION_TTL", 24*time.Hour, &errs),
		JWKSURL:    getEnv("JWKS_URL", ""),
		// Login rate limiting
		RedisURL:           getEnv("REDIS_URL", ""),
		LoginRateBurst:     getInt("LOGIN_RATE_BURST", 5, &errs),
		LoginRatePerMinute: getInt("LOGIN_RATE_PER_MINUTE", 5, &errs),
		// Logging
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getInt("LOG_MAX_FILES", 10, &errs),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
	cfg.parseErrs = errs
	return cfg
}

// Validate checks the settings the server cannot start without.
// Variables Load could not parse are rejected before anything else.
func (c *Config) Validate() error {
	if len(c.parseErrs) > 0 {
		return errors.Join(c.parseErrs...)
	}

	minSecret := 1
	if c.Environment == "prod" {
		minSecret = MinJWTSecretLength
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.Environment, validation.Required, validation.In("dev", "test", "prod")),
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.DatabaseURL, validation.Required),
		validation.Field(&c.JWTSecret,
			validation.Required,
			validation.Length(minSecret, 0),
		),
		validation.Field(&c.SessionTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.LoginRateBurst, validation.Min(1)),
		validation.Field(&c.LoginRatePerMinute, validation.Min(1)),
	)
}

// LoginRefillPerSecond converts the per-minute login allowance to a token refill rate.
func (c *Config) LoginRefillPerSecond() float64 {
	return float64(c.LoginRatePerMinute) / 60.0
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s=%q: not an integer", key, raw))
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s=%q: %w", key, raw, err))
		return defaultValue
	}
	return d
}
