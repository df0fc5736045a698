package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"roadtrip/internal/config"
)

// Provider is a language model backend for narration and route intent.
type Provider interface {
	Narrator
	RouteIntentParser
	Close()
}

// New builds the provider cfg selects. It returns nil and no error when the
// selected provider has no API key, leaving narration and model-based
// extraction disabled.
func New(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Provider {
	case config.AIProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, nil
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, logger), nil
	case config.AIProviderGemini, "":
		if cfg.GeminiKey == "" {
			return nil, nil
		}
		g, err := NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("ai provider %q: %w", cfg.Provider, config.ErrUnknownAIProvider)
	}
}
