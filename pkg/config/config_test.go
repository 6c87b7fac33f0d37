package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "prod")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PERSISTENCE_TTL_SECONDS", "7200")
	t.Setenv("ALLOWED_ORIGIN", "https://example.com")
	t.Setenv("RATE_LIMIT_TIMES", "10")
	t.Setenv("RATE_LIMIT_SECONDS", "60")
	t.Setenv("MAX_FILE_MB", "20")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("ANTHROPIC_API_URL", "https://api.anthropic.com")
	t.Setenv("ANTHROPIC_MODEL", "claude-sonnet-4")
	t.Setenv("ANTHROPIC_VERSION", "2023-06-01")
}

func TestLoadSuccess(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, 2*time.Hour, cfg.PersistenceTTL)
	assert.Equal(t, 20, cfg.MaxFileMB)
	assert.Equal(t, int64(20*1024*1024), cfg.MaxFileBytes())
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", cfg.EmbeddingModelName)
	assert.Equal(t, 4, cfg.ExtractConcurrency)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ANTHROPIC_MODEL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_MODEL")
}

func TestLoadInvalidTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PERSISTENCE_TTL_SECONDS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PERSISTENCE_TTL_SECONDS")
}
