package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, SourceHTTP, cfg.PostingsSource)
	assert.Equal(t, time.Duration(0), cfg.PostingsAPITimeout)
	assert.Equal(t, "postings.changed", cfg.NATSRefreshSubject)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Equal(t, 4, cfg.ReloadWorkers)
	assert.Zero(t, cfg.RefreshInterval)
	assert.Zero(t, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, 10000, cfg.MaxBoards)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("POSTINGS_SOURCE", SourceClickHouse)
	t.Setenv("POSTINGS_API_TIMEOUT", "15s")
	t.Setenv("LOG_DEVELOPMENT", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RELOAD_WORKERS", "0")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, SourceClickHouse, cfg.PostingsSource)
	assert.Equal(t, 15*time.Second, cfg.PostingsAPITimeout)
	assert.True(t, cfg.LogDevelopment)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 1, cfg.ReloadWorkers)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestLoadConfigRejectsUnknownSource(t *testing.T) {
	t.Setenv("POSTINGS_SOURCE", "ftp")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.EqualError(t, err, `invalid value "ftp" for POSTINGS_SOURCE`)
}
