package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"roadtrip/internal/ai"
	"roadtrip/internal/modules/extract"
	"roadtrip/internal/modules/routeplan"
	"roadtrip/internal/modules/trip"
)

var ErrEmptyMessage = errors.New("empty message")

// ClarificationReply is sent when a message names no usable route.
const ClarificationReply = "Could not determine route segments. Please specify your destinations clearly, for example \"from Denver to Moab\"."

type RequestExtractor interface {
	Extract(ctx context.Context, msg string, prior extract.Prior) (*extract.Extraction, bool)
}

type RouteOptimizer interface {
	Optimize(ctx context.Context, reqs []routeplan.SegmentRequest, prefs routeplan.Preferences) (*routeplan.RoutePlan, error)
}

// TripPlanner runs one chat turn: extract the route, optimize it, store it
// and narrate the result.
type TripPlanner struct {
	extractor RequestExtractor
	optimizer RouteOptimizer
	store     trip.StateStore
	narrator  ai.Narrator
	logger    *zap.Logger
}

// TurnResult is the outcome of one chat message.
type TurnResult struct {
	Reply              string                     `json:"reply"`
	NeedsClarification bool                       `json:"needs_clarification"`
	Strategy           string                     `json:"strategy,omitempty"`
	Plan               *routeplan.RoutePlan       `json:"plan,omitempty"`
	Recommendations    []routeplan.Recommendation `json:"recommendations,omitempty"`
}

// NewTripPlanner creates a TripPlanner. narrator may be nil, in which case
// replies are formatted with routeplan.FormatPlan.
func NewTripPlanner(extractor RequestExtractor, optimizer RouteOptimizer, store trip.StateStore, narrator ai.Narrator, logger *zap.Logger) *TripPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripPlanner{
		extractor: extractor,
		optimizer: optimizer,
		store:     store,
		narrator:  narrator,
		logger:    logger,
	}
}

// HandleMessage processes a user message for the trip. A message without a
// usable route yields a clarification reply and leaves the stored state
// untouched. The state is saved only after the optimizer returns.
func (p *TripPlanner) HandleMessage(ctx context.Context, tripID, message string) (*TurnResult, error) {
	if !trip.ValidID(tripID) {
		return nil, trip.ErrInvalidTripID
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	// 1. Load what earlier turns settled.
	st, err := p.store.Get(ctx, tripID)
	if errors.Is(err, trip.ErrNotFound) {
		st = trip.New(tripID)
	} else if err != nil {
		return nil, fmt.Errorf("load route state: %w", err)
	}

	// 2. Extract the requested route.
	ex, ok := p.extractor.Extract(ctx, message, st.Prior())
	if !ok {
		p.logger.Info("planner: clarification needed", zap.String("trip_id", tripID))
		return &TurnResult{Reply: ClarificationReply, NeedsClarification: true}, nil
	}

	// 3. Merge and optimize.
	st = st.WithExtraction(ex)
	plan, err := p.optimizer.Optimize(ctx, ex.Requests, st.Preferences)
	if err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}

	// 4. Persist. A failed plan keeps the previous one.
	if plan.Success {
		st = st.WithPlan(plan)
	}
	if err := p.store.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save route state: %w", err)
	}

	p.logger.Info("planner: route planned",
		zap.String("trip_id", tripID),
		zap.String("strategy", ex.Strategy),
		zap.String("plan_id", plan.ID),
		zap.Bool("success", plan.Success),
		zap.Int("segments", len(plan.Segments)))

	// 5. Narrate.
	return &TurnResult{
		Reply:           p.narrate(ctx, plan),
		Strategy:        ex.Strategy,
		Plan:            plan,
		Recommendations: routeplan.Recommend(plan),
	}, nil
}

func (p *TripPlanner) narrate(ctx context.Context, plan *routeplan.RoutePlan) string {
	if p.narrator == nil {
		return routeplan.FormatPlan(plan)
	}
	reply, err := p.narrator.NarratePlan(ctx, plan)
	if err != nil || strings.TrimSpace(reply) == "" {
		p.logger.Warn("planner: narration failed, using formatted plan", zap.String("plan_id", plan.ID), zap.Error(err))
		return routeplan.FormatPlan(plan)
	}
	return reply
}
