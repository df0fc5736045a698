package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "maps-key")
	t.Setenv("ROADTRIP_HTTP_ADDR", "")
	t.Setenv("ROADTRIP_AI_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 8.0, cfg.Planning.MaxDriveHours)
	assert.Equal(t, 800.0, cfg.Planning.MaxDistanceKm)
	assert.Equal(t, 100*time.Millisecond, cfg.Planning.CallDelay)
	assert.Equal(t, 4, cfg.Planning.MaxSplitDepth)
	assert.Equal(t, AIProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.GeminiModel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "maps-key")
	t.Setenv("ROADTRIP_MAX_DRIVE_HOURS", "6.5")
	t.Setenv("ROADTRIP_CALL_DELAY", "250ms")
	t.Setenv("ROADTRIP_CALL_TIMEOUT", "20")
	t.Setenv("ROADTRIP_MAX_SPLIT_DEPTH", "not-a-number")
	t.Setenv("ROADTRIP_LOG_DEV", "true")
	t.Setenv("ROADTRIP_AI_PROVIDER", "OpenAI")
	t.Setenv("ROADTRIP_OPENAI_MODEL", "gpt-4o")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6.5, cfg.Planning.MaxDriveHours)
	assert.Equal(t, 250*time.Millisecond, cfg.Planning.CallDelay)
	assert.Equal(t, 20*time.Second, cfg.Planning.CallTimeout)
	assert.Equal(t, 4, cfg.Planning.MaxSplitDepth)
	assert.True(t, cfg.Log.Dev)
	assert.Equal(t, AIProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-4o", cfg.AI.OpenAIModel)
}

func TestLoadRequiresMapsKey(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	_, err := Load()
	require.ErrorIs(t, err, ErrMissingMapsKey)
}

func TestLoadRejectsUnknownAIProvider(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "maps-key")
	t.Setenv("ROADTRIP_AI_PROVIDER", "claude")
	_, err := Load()
	require.ErrorIs(t, err, ErrUnknownAIProvider)
}
