package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"roadtrip/internal/modules/extract"
	"roadtrip/internal/modules/routeplan"
	"roadtrip/internal/modules/trip"
)

// RouteOptimizer is the part of routeplan.Service the tools drive.
type RouteOptimizer interface {
	Optimize(ctx context.Context, reqs []routeplan.SegmentRequest, prefs routeplan.Preferences) (*routeplan.RoutePlan, error)
	Calculate(ctx context.Context, reqs []routeplan.SegmentRequest, prefs routeplan.Preferences) (*routeplan.RoutePlan, error)
}

type Service struct {
	optimizer RouteOptimizer
	store     trip.StateStore
	logger    *zap.Logger
}

func NewService(optimizer RouteOptimizer, store trip.StateStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{optimizer: optimizer, store: store, logger: logger}
}

// Execute runs op for the trip. Invalid input is returned as an error
// wrapping ErrInvalidArgs; provider failures come back in-band as an
// unsuccessful Result.
func (s *Service) Execute(ctx context.Context, tripID string, op Operation) (*Result, error) {
	if !trip.ValidID(tripID) {
		return nil, trip.ErrInvalidTripID
	}
	s.logger.Info("tools: execute", zap.String("trip_id", tripID), zap.String("tool", string(op.Kind())))

	switch o := op.(type) {
	case PlanRoute:
		return s.planRoute(ctx, tripID, o)
	case OptimizeRoute:
		return s.optimizeRoute(ctx, tripID, o)
	case CalculateRoute:
		return s.calculateRoute(ctx, tripID, o)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownTool, op)
	}
}

func (s *Service) planRoute(ctx context.Context, tripID string, o PlanRoute) (*Result, error) {
	st, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}

	chain := append([]string{o.Origin}, o.Destinations...)
	st = st.WithChain(chain).WithPreferences(o.Constraints.preferences())

	var notes []string
	if mode := strings.ToLower(o.TransportMode); mode != "" && mode != "driving" {
		notes = append(notes, fmt.Sprintf("Transport mode '%s' is not supported; the route was planned for driving.", o.TransportMode))
	}

	res, err := s.optimizeAndSave(ctx, st, KindPlanRoute, extract.Pairs(chain))
	if err != nil {
		return nil, err
	}
	if res.Success && len(o.DateConstraints) > 0 {
		res.DateConstraints = o.DateConstraints
		notes = append(notes, dateNotes(o.DateConstraints)...)
	}
	res.Notes = append(res.Notes, notes...)
	return res, nil
}

func (s *Service) optimizeRoute(ctx context.Context, tripID string, o OptimizeRoute) (*Result, error) {
	st, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if o.UserPreferences != nil {
		st = st.WithPreferences(o.UserPreferences.preferences())
	}
	if chain, ok := extract.ChainOf(o.Segments); ok {
		st = st.WithChain(chain)
	} else {
		s.logger.Debug("tools: segments are not contiguous, stored chain kept", zap.String("trip_id", tripID))
	}
	return s.optimizeAndSave(ctx, st, KindOptimizeRoute, o.Segments)
}

func (s *Service) calculateRoute(ctx context.Context, tripID string, o CalculateRoute) (*Result, error) {
	st, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	prefs := st.Preferences.Merge(o.UserPreferences.preferences())

	plan, err := s.optimizer.Calculate(ctx, o.Segments, prefs)
	if err != nil {
		return nil, invalidArgs(KindCalculateRoute, err)
	}
	return &Result{
		Tool:            KindCalculateRoute,
		Success:         plan.Success,
		Plan:            plan,
		Recommendations: append(routeplan.SegmentIssues(plan), routeplan.Recommend(plan)...),
		Error:           planError(plan),
	}, nil
}

// optimizeAndSave optimizes reqs with the preferences of st and stores the
// state. The plan replaces the stored one only when it succeeded.
func (s *Service) optimizeAndSave(ctx context.Context, st trip.RouteState, kind Kind, reqs []routeplan.SegmentRequest) (*Result, error) {
	plan, err := s.optimizer.Optimize(ctx, reqs, st.Preferences)
	if err != nil {
		return nil, invalidArgs(kind, err)
	}
	if plan.Success {
		st = st.WithPlan(plan)
	}
	if err := s.store.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save route state: %w", err)
	}

	return &Result{
		Tool:            kind,
		Success:         plan.Success,
		Plan:            plan,
		Recommendations: routeplan.Recommend(plan),
		Error:           planError(plan),
	}, nil
}

func (s *Service) load(ctx context.Context, tripID string) (trip.RouteState, error) {
	st, err := s.store.Get(ctx, tripID)
	if errors.Is(err, trip.ErrNotFound) {
		return trip.New(tripID), nil
	}
	if err != nil {
		return trip.RouteState{}, fmt.Errorf("load route state: %w", err)
	}
	return st, nil
}

func invalidArgs(kind Kind, err error) error {
	if errors.Is(err, routeplan.ErrBadRequest) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidArgs, kind, err)
	}
	return err
}

func planError(plan *routeplan.RoutePlan) string {
	if plan.Success || len(plan.Errors) == 0 {
		return ""
	}
	return plan.Errors[len(plan.Errors)-1]
}

func dateNotes(constraints []DateConstraint) []string {
	var notes []string
	for _, c := range constraints {
		switch {
		case c.StartDate != "" && c.EndDate != "":
			notes = append(notes, fmt.Sprintf("Must be in %s from %s to %s", c.Location, c.StartDate, c.EndDate))
		case c.StartDate != "":
			notes = append(notes, fmt.Sprintf("Must be in %s on %s", c.Location, c.StartDate))
		}
	}
	return notes
}
