package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"roadtrip/internal/modules/routeplan"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// completer is the part of the OpenAI chat completions service the provider
// calls.
type completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...openaiopt.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIProvider narrates plans and parses route intent with an OpenAI chat
// model. It shares prompts and parsing with GeminiProvider.
type OpenAIProvider struct {
	chat   completer
	model  string
	logger *zap.Logger
}

// NewOpenAIProvider creates a provider for apiKey. An empty model name
// selects DefaultOpenAIModel.
func NewOpenAIProvider(apiKey, model string, logger *zap.Logger) *OpenAIProvider {
	client := openai.NewClient(openaiopt.WithAPIKey(apiKey))
	return newOpenAIProvider(&client.Chat.Completions, model, logger)
}

func newOpenAIProvider(chat completer, model string, logger *zap.Logger) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIProvider{chat: chat, model: model, logger: logger}
}

// Close is a no-op; the OpenAI client holds no long-lived resources.
func (p *OpenAIProvider) Close() {}

func (p *OpenAIProvider) NarratePlan(ctx context.Context, plan *routeplan.RoutePlan) (string, error) {
	prompt, err := narrationPrompt(plan)
	if err != nil {
		return "", err
	}
	text, err := p.complete(ctx, narratorInstruction, prompt, 0.6)
	if err != nil {
		return "", fmt.Errorf("narrate: %w", err)
	}
	p.logger.Debug("ai: narrated plan", zap.String("plan_id", plan.ID), zap.String("model", p.model), zap.Int("chars", len(text)))
	return text, nil
}

func (p *OpenAIProvider) ParseRouteIntent(ctx context.Context, message string) (string, []string, error) {
	text, err := p.complete(ctx, intentInstruction, intentPrompt(message), 0.1)
	if err != nil {
		return "", nil, fmt.Errorf("route intent: %w", err)
	}
	origin, dests, err := parseRouteIntent(text)
	if err != nil {
		return "", nil, err
	}
	p.logger.Debug("ai: route intent", zap.String("origin", origin), zap.Strings("destinations", dests))
	return origin, dests, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	resp, err := p.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion error: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
