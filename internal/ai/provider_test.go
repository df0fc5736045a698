package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadtrip/internal/config"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	p, err := New(ctx, config.AIConfig{Provider: config.AIProviderGemini}, nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = New(ctx, config.AIConfig{Provider: config.AIProviderOpenAI, GeminiKey: "unused"}, nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = New(ctx, config.AIConfig{Provider: config.AIProviderOpenAI, OpenAIKey: "sk-test"}, nil)
	require.NoError(t, err)
	require.IsType(t, &OpenAIProvider{}, p)
	assert.Equal(t, DefaultOpenAIModel, p.(*OpenAIProvider).model)

	_, err = New(ctx, config.AIConfig{Provider: "claude"}, nil)
	require.ErrorIs(t, err, config.ErrUnknownAIProvider)
}
