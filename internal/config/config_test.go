package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "APP_VERSION", "HTTP_REQUEST_TIMEOUT_SECONDS",
		"REDIS_ENABLED", "REDIS_ADDR", "REDIS_DB", "CHAT_CACHE_TTL_SECONDS",
		"LOG_LEVEL", "LOG_OUTPUT", "CORS_ALLOW_ORIGINS", "CATALOG_SEED_FILE",
		"LLM_PROVIDER", "AWS_DEFAULT_REGION", "AWS_REGION", "AWS_PROFILE", "BEDROCK_PROFILE",
		"BEDROCK_MODEL_ID", "LLM_MAX_TOKENS", "LLM_TEMPERATURE", "LLM_TIMEOUT_SECONDS",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.App.Addr())
	assert.Equal(t, 60*time.Second, cfg.App.RequestTimeout())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL())
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORS.AllowOrigins)
	assert.Empty(t, cfg.Catalog.SeedFile)

	assert.Equal(t, ProviderBedrock, cfg.LLM.Provider)
	assert.Equal(t, "us-east-1", cfg.LLM.Region)
	assert.Empty(t, cfg.LLM.Profile)
	assert.Equal(t, "us.amazon.nova-pro-v1:0", cfg.LLM.Model())
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Zero(t, cfg.LLM.Temperature)
}

func TestLoad_RegionAndProfilePrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("BEDROCK_PROFILE", "bedrock")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.LLM.Region)
	assert.Equal(t, "bedrock", cfg.LLM.Profile)

	t.Setenv("AWS_DEFAULT_REGION", "us-west-2")
	t.Setenv("AWS_PROFILE", "default")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.LLM.Region)
	assert.Equal(t, "default", cfg.LLM.Profile)
}

func TestLoad_OpenAIProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_MODEL", "gpt-test")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1/")
	t.Setenv("LLM_TEMPERATURE", "0.3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-test", cfg.LLM.Model())
	assert.Equal(t, "http://localhost:9999/v1", cfg.LLM.OpenAIBaseURL)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "watson")
	_, err := Load()
	assert.ErrorContains(t, err, "LLM_PROVIDER")

	clearEnv(t)
	t.Setenv("REDIS_DB", "primary")
	_, err = Load()
	assert.ErrorContains(t, err, "REDIS_DB")

	clearEnv(t)
	t.Setenv("LLM_MAX_TOKENS", "lots")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Zero(t, cfg.App.RequestTimeout())
}
