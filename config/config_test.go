package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8099", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, "KES", cfg.Marketplace.Currency)
	assert.NotEmpty(t, cfg.Marketplace.Categories)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("JWT_ACCESS_EXPIRY", "1h")
	t.Setenv("RATE_LIMIT_REQUESTS", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.JWT.AccessExpiry)
	assert.Equal(t, 7, cfg.RateLimit.Requests)
}

func TestPageSize(t *testing.T) {
	m := Default().Marketplace
	assert.Equal(t, m.DefaultPageSize, m.PageSize(0))
	assert.Equal(t, 5, m.PageSize(5))
	assert.Equal(t, m.MaxPageSize, m.PageSize(m.MaxPageSize+1))
}

func TestLoadRejectsDefaultSecretsInProduction(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	_, err := Load()
	assert.ErrorIs(t, err, ErrDefaultSecrets)

	t.Setenv("JWT_ACCESS_SECRET", "a-real-access-secret")
	_, err = Load()
	assert.ErrorIs(t, err, ErrDefaultSecrets, "refresh secret still built in")

	t.Setenv("JWT_REFRESH_SECRET", "a-real-refresh-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "a-real-access-secret", cfg.JWT.AccessSecret)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate(), "development tolerates the built-in secrets")

	cfg.Server.Env = "production"
	assert.ErrorIs(t, cfg.Validate(), ErrDefaultSecrets)
	cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret = "s1", ""
	assert.ErrorIs(t, cfg.Validate(), ErrDefaultSecrets)
	cfg.JWT.RefreshSecret = "s2"
	assert.NoError(t, cfg.Validate())
}

func TestNoAdminPasswordByDefault(t *testing.T) {
	assert.Empty(t, Default().Marketplace.AdminPassword)
}
