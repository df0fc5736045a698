package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"roadtrip/internal/modules/routeplan"
)

const DefaultModel = "gemini-2.0-flash"

// generator is the part of *genai.GenerativeModel the provider calls.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiProvider narrates plans and parses route intent with Gemini.
type GeminiProvider struct {
	client   *genai.Client
	narrator generator
	intent   generator
	logger   *zap.Logger
}

// NewGeminiProvider initializes a Gemini client. An empty model name selects
// DefaultModel.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	narrator := client.GenerativeModel(modelName)
	narrator.SystemInstruction = genai.NewUserContent(genai.Text(narratorInstruction))
	narrator.SetTemperature(0.6)

	// JSON mode keeps the intent answer machine-readable.
	intent := client.GenerativeModel(modelName)
	intent.ResponseMIMEType = "application/json"
	intent.SystemInstruction = genai.NewUserContent(genai.Text(intentInstruction))
	intent.SetTemperature(0.1)

	p := newProvider(narrator, intent, logger)
	p.client = client
	return p, nil
}

func newProvider(narrator, intent generator, logger *zap.Logger) *GeminiProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiProvider{narrator: narrator, intent: intent, logger: logger}
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

// NarratePlan writes a short day-by-day reply for plan. The model only sees
// figures already in the plan.
func (p *GeminiProvider) NarratePlan(ctx context.Context, plan *routeplan.RoutePlan) (string, error) {
	prompt, err := narrationPrompt(plan)
	if err != nil {
		return "", err
	}
	text, err := generate(ctx, p.narrator, prompt)
	if err != nil {
		return "", fmt.Errorf("narrate: %w", err)
	}
	p.logger.Debug("ai: narrated plan", zap.String("plan_id", plan.ID), zap.Int("chars", len(text)))
	return text, nil
}

// ParseRouteIntent asks the model for the origin and ordered destinations of
// message. ErrNoRoute is returned when fewer than two places come back.
func (p *GeminiProvider) ParseRouteIntent(ctx context.Context, message string) (string, []string, error) {
	text, err := generate(ctx, p.intent, intentPrompt(message))
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

func generate(ctx context.Context, g generator, prompt string) (string, error) {
	resp, err := g.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

