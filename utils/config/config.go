// Package config handles environment-based configuration for Vigil.
package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the complete Vigil configuration loaded from environment variables.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Watchdog     WatchdogConfig
	Broadcast    BroadcastConfig
	LogRetention LogRetentionConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string
	Port        string
	Mode        string // "debug" or "release"
	CORSOrigins []string
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string
}

// AuthConfig contains credential issuance and lockout settings.
type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	MaxFailedLogins int
	LockoutWindow   time.Duration
}

// RateLimitConfig contains per-identity request limits (requests per minute).
type RateLimitConfig struct {
	RegisterPerMinute int
	LoginPerMinute    int
}

// WatchdogConfig contains self-healing watchdog settings.
type WatchdogConfig struct {
	APIURL           string
	Service          string
	Interval         time.Duration
	FailureThreshold int
	CheckTimeout     time.Duration
	Cooldown         time.Duration
}

// BroadcastConfig contains live-update stream settings.
type BroadcastConfig struct {
	Interval time.Duration
}

// LogRetentionConfig contains history retention settings.
type LogRetentionConfig struct {
	Days int
}

// Load reads configuration from environment variables with sensible defaults.
// All environment variables use the VIGIL_ prefix.
//
// Configuration variables:
//   - VIGIL_SERVER_HOST (default: "0.0.0.0")
//   - VIGIL_SERVER_PORT (default: "8080")
//   - VIGIL_SERVER_MODE (default: "debug")
//   - VIGIL_CORS_ORIGINS (default: "http://localhost:3000", comma-separated)
//   - VIGIL_DB_PATH (default: "./vigil.db"; an unreachable path is not fatal —
//     the store degrades to bounded in-memory history until restart)
//   - VIGIL_JWT_SECRET (required, no default — startup fails without it)
//   - VIGIL_ACCESS_TOKEN_TTL (default: "30m")
//   - VIGIL_REFRESH_TOKEN_TTL (default: "168h")
//   - VIGIL_MAX_FAILED_LOGINS (default: "5")
//   - VIGIL_LOCKOUT_WINDOW (default: "15m")
//   - VIGIL_RATE_REGISTER_PER_MIN (default: "5")
//   - VIGIL_RATE_LOGIN_PER_MIN (default: "10")
//   - VIGIL_WATCHDOG_API_URL (default: "http://localhost:8080")
//   - VIGIL_WATCHDOG_SERVICE (default: "vigil-api")
//   - VIGIL_WATCHDOG_INTERVAL (default: "10s")
//   - VIGIL_WATCHDOG_FAILURE_THRESHOLD (default: "3")
//   - VIGIL_WATCHDOG_CHECK_TIMEOUT (default: "5s")
//   - VIGIL_WATCHDOG_COOLDOWN (default: "60s")
//   - VIGIL_BROADCAST_INTERVAL (default: "5s")
//   - VIGIL_LOG_RETENTION_DAYS (default: "30")
//
// Returns an error if validation fails.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("VIGIL_SERVER_HOST", "0.0.0.0"),
			Port:        getEnv("VIGIL_SERVER_PORT", "8080"),
			Mode:        getEnv("VIGIL_SERVER_MODE", "debug"),
			CORSOrigins: getEnvList("VIGIL_CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Path: getEnv("VIGIL_DB_PATH", "./vigil.db"),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("VIGIL_JWT_SECRET"),
			AccessTokenTTL:  getEnvDuration("VIGIL_ACCESS_TOKEN_TTL", 30*time.Minute),
			RefreshTokenTTL: getEnvDuration("VIGIL_REFRESH_TOKEN_TTL", 168*time.Hour),
			MaxFailedLogins: getEnvInt("VIGIL_MAX_FAILED_LOGINS", 5),
			LockoutWindow:   getEnvDuration("VIGIL_LOCKOUT_WINDOW", 15*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RegisterPerMinute: getEnvInt("VIGIL_RATE_REGISTER_PER_MIN", 5),
			LoginPerMinute:    getEnvInt("VIGIL_RATE_LOGIN_PER_MIN", 10),
		},
		Watchdog: WatchdogConfig{
			APIURL:           getEnv("VIGIL_WATCHDOG_API_URL", "http://localhost:8080"),
			Service:          getEnv("VIGIL_WATCHDOG_SERVICE", "vigil-api"),
			Interval:         getEnvDuration("VIGIL_WATCHDOG_INTERVAL", 10*time.Second),
			FailureThreshold: getEnvInt("VIGIL_WATCHDOG_FAILURE_THRESHOLD", 3),
			CheckTimeout:     getEnvDuration("VIGIL_WATCHDOG_CHECK_TIMEOUT", 5*time.Second),
			Cooldown:         getEnvDuration("VIGIL_WATCHDOG_COOLDOWN", 60*time.Second),
		},
		Broadcast: BroadcastConfig{
			Interval: getEnvDuration("VIGIL_BROADCAST_INTERVAL", 5*time.Second),
		},
		LogRetention: LogRetentionConfig{
			Days: getEnvInt("VIGIL_LOG_RETENTION_DAYS", 30),
		},
	}

	// Validate configuration
	if err := validate(cfg); err != nil {
		log.Printf("Configuration validation failed: %v", err)
		return nil, err
	}

	// Log loaded configuration
	log.Printf("Configuration loaded:")
	log.Printf("  Server: %s:%s (mode: %s)", cfg.Server.Host, cfg.Server.Port, cfg.Server.Mode)
	log.Printf("  Database: %s", cfg.Database.Path)
	log.Printf("  CORS origins: %v", cfg.Server.CORSOrigins)
	log.Printf("  Lockout: %d failed logins -> %v", cfg.Auth.MaxFailedLogins, cfg.Auth.LockoutWindow)
	log.Printf("  Rate limits: register %d/min, login %d/min",
		cfg.RateLimit.RegisterPerMinute, cfg.RateLimit.LoginPerMinute)
	log.Printf("  Watchdog: service=%s interval=%v threshold=%d timeout=%v cooldown=%v",
		cfg.Watchdog.Service, cfg.Watchdog.Interval, cfg.Watchdog.FailureThreshold,
		cfg.Watchdog.CheckTimeout, cfg.Watchdog.Cooldown)
	log.Printf("  Log Retention: %d days", cfg.LogRetention.Days)

	return cfg, nil
}

// validate checks if the configuration is valid. The signing secret is the
// one value with no fallback: without it no credential can be verified.
func validate(cfg *Config) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("VIGIL_JWT_SECRET must be set")
	}
	if cfg.Auth.MaxFailedLogins < 1 {
		return errors.New("max failed logins must be at least 1")
	}
	if cfg.Auth.LockoutWindow < time.Second {
		return errors.New("lockout window must be at least 1 second")
	}
	if cfg.RateLimit.RegisterPerMinute < 1 || cfg.RateLimit.LoginPerMinute < 1 {
		return errors.New("rate limits must be at least 1 per minute")
	}
	if cfg.Watchdog.Interval < time.Second {
		return errors.New("watchdog interval must be at least 1 second")
	}
	if cfg.Watchdog.FailureThreshold < 1 {
		return errors.New("watchdog failure threshold must be at least 1")
	}
	if cfg.Watchdog.CheckTimeout < time.Second {
		return errors.New("watchdog check timeout must be at least 1 second")
	}
	if cfg.Broadcast.Interval < time.Second {
		return errors.New("broadcast interval must be at least 1 second")
	}
	if cfg.LogRetention.Days < 1 {
		return errors.New("log retention days must be at least 1")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid integer value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns a default value.
// Accepts values like "30s", "5m", "1h"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %v", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable or returns a default value.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
