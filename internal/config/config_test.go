package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/memeboard")
	t.Setenv("TOKEN_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, 60*time.Second, cfg.RateLimitWindow)
	require.Equal(t, 100, cfg.RateLimitMax)
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, int64(4), cfg.HashWorkers)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("RATE_LIMIT_WINDOW", "10s")
	t.Setenv("RATE_LIMIT_MAX", "3")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("PASSWORD_PEPPER", "pepper")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, cfg.TokenTTL)
	require.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	require.Equal(t, 3, cfg.RateLimitMax)
	require.Equal(t, "localhost:6379", cfg.RedisAddress)
	require.Equal(t, "pepper", cfg.PasswordPepper)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TOKEN_SECRET", "0123456789abcdef0123456789abcdef")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_MissingTokenSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("TOKEN_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "TOKEN_SECRET")
}

func TestLoad_ProductionRejectsShortSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("TOKEN_SECRET", "short")
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "TOKEN_SECRET")

	// the same secret is tolerated outside production
	t.Setenv("ENVIRONMENT", "development")
	_, err = Load()
	require.NoError(t, err)
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL", "0s")

	_, err := Load()
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "TOKEN_TTL"))
}
