package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("VIGIL_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIGIL_JWT_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VIGIL_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "./vigil.db", cfg.Database.Path)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 5, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutWindow)
	assert.Equal(t, 5, cfg.RateLimit.RegisterPerMinute)
	assert.Equal(t, 10, cfg.RateLimit.LoginPerMinute)
	assert.Equal(t, "vigil-api", cfg.Watchdog.Service)
	assert.Equal(t, 10*time.Second, cfg.Watchdog.Interval)
	assert.Equal(t, 3, cfg.Watchdog.FailureThreshold)
	assert.Equal(t, 5*time.Second, cfg.Watchdog.CheckTimeout)
	assert.Equal(t, 60*time.Second, cfg.Watchdog.Cooldown)
	assert.Equal(t, 5*time.Second, cfg.Broadcast.Interval)
	assert.Equal(t, 30, cfg.LogRetention.Days)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VIGIL_JWT_SECRET", "test-secret")
	t.Setenv("VIGIL_SERVER_PORT", "9090")
	t.Setenv("VIGIL_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("VIGIL_MAX_FAILED_LOGINS", "3")
	t.Setenv("VIGIL_LOCKOUT_WINDOW", "5m")
	t.Setenv("VIGIL_WATCHDOG_COOLDOWN", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 3, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 5*time.Minute, cfg.Auth.LockoutWindow)
	assert.Equal(t, 2*time.Minute, cfg.Watchdog.Cooldown)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("VIGIL_JWT_SECRET", "test-secret")
	t.Setenv("VIGIL_MAX_FAILED_LOGINS", "not-a-number")
	t.Setenv("VIGIL_WATCHDOG_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 10*time.Second, cfg.Watchdog.Interval)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("VIGIL_JWT_SECRET", "test-secret")
	t.Setenv("VIGIL_WATCHDOG_FAILURE_THRESHOLD", "0")

	_, err := Load()
	assert.Error(t, err)
}
