package ai

import (
	"context"
	"errors"

	"roadtrip/internal/modules/routeplan"
)

var (
	ErrEmptyResponse = errors.New("empty response from model")
	ErrNoRoute       = errors.New("model found no route in message")
)

// Narrator turns a computed plan into a conversational reply.
type Narrator interface {
	NarratePlan(ctx context.Context, plan *routeplan.RoutePlan) (string, error)
}

// RouteIntentParser extracts the origin and ordered destinations of a
// free-text travel request.
type RouteIntentParser interface {
	ParseRouteIntent(ctx context.Context, message string) (origin string, destinations []string, err error)
}
