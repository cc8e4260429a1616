package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, DirectoryModeEmbedded, cfg.DirectoryMode)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 60, cfg.RateLimitPerMinute)
	require.Equal(t, 1000, cfg.RateLimitPerHour)
	require.Equal(t, 5, cfg.LoginAttemptLimit)
	require.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTHGATE_JWT_SECRET", "s3cret")
	t.Setenv("AUTHGATE_DIRECTORY_MODE", "remote")
	t.Setenv("AUTHGATE_ACCESS_TOKEN_TTL", "15m")
	t.Setenv("AUTHGATE_RATE_LIMIT_PER_MINUTE", "10")
	t.Setenv("AUTHGATE_REQUIRE_VERIFIED_EMAIL", "true")
	t.Setenv("PORT", "9999")

	cfg := LoadConfig()

	require.Equal(t, "s3cret", cfg.JWTSecret)
	require.Equal(t, DirectoryModeRemote, cfg.DirectoryMode)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 10, cfg.RateLimitPerMinute)
	require.True(t, cfg.RequireVerifiedEmail)
	require.Equal(t, 9999, cfg.Port)
}

func TestDurationEnvFallsBackToMinutes(t *testing.T) {
	t.Setenv("AUTHGATE_ACCESS_TOKEN_TTL", "45")

	cfg := LoadConfig()
	require.Equal(t, 45*time.Minute, cfg.AccessTokenTTL)
}
