package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, devJWTSecret, cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.True(t, cfg.Server.IsDevelopment())
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DASHBOARD_CACHE_TTL_SECONDS", "5")

	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 7, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.Redis.CacheTTL)
	assert.Contains(t, cfg.Postgres.DSN(), "@db.internal:")
	assert.False(t, cfg.Server.IsDevelopment())
}

func TestLoadEnv_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("JWT_SECRET", "")

	_, err := LoadEnv()
	assert.Error(t, err)
}
