// README: Route optimizer: computes, validates and decomposes segments into a plan.
package routeplan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"roadtrip/internal/geo"
	"roadtrip/internal/maps"
)

// DirectionsProvider computes one driving leg.
type DirectionsProvider interface {
	ComputeLeg(ctx context.Context, origin, destination string, opts maps.LegOptions) (maps.Leg, error)
}

// StopFinder lists towns near a point.
type StopFinder interface {
	TownsNear(ctx context.Context, p geo.Point, radiusKm float64) ([]maps.Place, error)
}

type Config struct {
	// Defaults fill limits the trip leaves unset.
	Defaults Preferences
	// CallDelay spaces consecutive directions calls within one run.
	CallDelay time.Duration
	// CallTimeout bounds every directions call.
	CallTimeout time.Duration
	// MaxSplitDepth caps recursive decomposition of a single request.
	MaxSplitDepth int
}

// DefaultConfig returns the optimizer settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Defaults:      DefaultPreferences,
		CallDelay:     100 * time.Millisecond,
		CallTimeout:   15 * time.Second,
		MaxSplitDepth: 4,
	}
}

type Service struct {
	directions DirectionsProvider
	resolver   *Resolver
	stops      StopFinder
	cfg        Config
	newID      func() string
	now        func() time.Time
	logger     *zap.Logger
}

type Option func(*Service)

// WithResolver enables endpoint resolution and stop naming.
func WithResolver(r *Resolver) Option { return func(s *Service) { s.resolver = r } }

// WithStopFinder enables discovery of real towns for legs without splits.
func WithStopFinder(f StopFinder) Option { return func(s *Service) { s.stops = f } }

func WithIDFunc(fn func() string) Option { return func(s *Service) { s.newID = fn } }

func WithClock(fn func() time.Time) Option { return func(s *Service) { s.now = fn } }

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(directions DirectionsProvider, cfg Config, opts ...Option) *Service {
	def := DefaultConfig()
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	if cfg.MaxSplitDepth <= 0 {
		cfg.MaxSplitDepth = def.MaxSplitDepth
	}
	if cfg.CallDelay < 0 {
		cfg.CallDelay = 0
	}
	cfg.Defaults = cfg.Defaults.Effective(DefaultPreferences)

	s := &Service{
		directions: directions,
		cfg:        cfg,
		newID:      uuid.NewString,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the configured default preferences.
func (s *Service) Defaults() Preferences { return s.cfg.Defaults }

// Optimize computes every request in order, decomposing legs that exceed the
// daily limits. Per-segment failures are reported in the plan; the error is
// reserved for malformed input.
func (s *Service) Optimize(ctx context.Context, reqs []SegmentRequest, prefs Preferences) (*RoutePlan, error) {
	return s.plan(ctx, reqs, prefs, true)
}

// Calculate computes and validates every request without decomposing.
func (s *Service) Calculate(ctx context.Context, reqs []SegmentRequest, prefs Preferences) (*RoutePlan, error) {
	return s.plan(ctx, reqs, prefs, false)
}

func (s *Service) plan(ctx context.Context, reqs []SegmentRequest, prefs Preferences, decompose bool) (*RoutePlan, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no segments requested", ErrBadRequest)
	}
	for i, req := range reqs {
		if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" {
			return nil, fmt.Errorf("%w: segment %d has a blank origin or destination", ErrBadRequest, i+1)
		}
	}

	limit := rate.Inf
	if s.cfg.CallDelay > 0 {
		limit = rate.Every(s.cfg.CallDelay)
	}
	r := &run{
		svc:       s,
		prefs:     prefs.Effective(s.cfg.Defaults),
		limiter:   rate.NewLimiter(limit, 1),
		decompose: decompose,
		warnings:  []string{},
	}
	s.logger.Info("routeplan: optimize",
		zap.Int("requests", len(reqs)),
		zap.Bool("decompose", decompose),
		zap.Float64("max_daily_drive_hours", r.prefs.MaxDailyDriveHours),
		zap.Float64("max_daily_distance_km", r.prefs.MaxDailyDistanceKm))

	var prevDestination, carried string
	var prevRouted bool
	for i, req := range reqs {
		// An origin the previous segment reached is kept as routed.
		fixed := fixedEnds{origin: prevRouted && req.Origin == prevDestination}
		if fixed.origin && carried != "" {
			req.Origin = carried
		}
		prevDestination, carried, prevRouted = reqs[i].Destination, "", false

		seg, err := r.compute(ctx, req, fixed)
		if errors.Is(err, maps.ErrRequestDenied) {
			s.logger.Error("routeplan: directions request denied", zap.Error(err))
			return r.denied(err), nil
		}
		if err != nil {
			r.fail(fmt.Sprintf("Could not calculate route from %s to %s: %v", req.Origin, req.Destination, err))
			continue
		}
		prevRouted = true
		if seg.ResolvedFrom != nil {
			r.warnings = append(r.warnings, resolutionNote(seg.ResolvedFrom))
			if seg.ResolvedFrom.Destination != nil {
				carried = seg.Destination
			}
		}
		r.process(ctx, seg, 0)
	}
	return r.finish(), nil
}

// run carries the state of one optimizer invocation.
type run struct {
	svc       *Service
	prefs     Preferences
	limiter   *rate.Limiter
	decompose bool
	segments  []Segment
	warnings  []string
	errs      []string
	stopSeq   int
}

func (r *run) computeLeg(ctx context.Context, origin, destination string, waypoints []string) (maps.Leg, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return maps.Leg{}, fmt.Errorf("directions: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, r.svc.cfg.CallTimeout)
	defer cancel()
	return r.svc.directions.ComputeLeg(ctx, origin, destination, maps.LegOptions{Waypoints: waypoints, Avoid: r.prefs.Avoid})
}

// fixedEnds marks endpoints an earlier leg already reached. They are never
// replaced by resolution.
type fixedEnds struct {
	origin, destination bool
}

// compute fetches the leg for req, retrying once with the nearest towns when
// the provider does not recognise an endpoint.
func (r *run) compute(ctx context.Context, req SegmentRequest, fixed fixedEnds) (Segment, error) {
	leg, err := r.computeLeg(ctx, req.Origin, req.Destination, req.Waypoints)
	if err == nil {
		return newSegment(req, leg), nil
	}
	if !errors.Is(err, maps.ErrNoResults) || r.svc.resolver == nil {
		return Segment{}, err
	}

	res, resolved := r.resolve(ctx, req, fixed)
	if res == nil {
		return Segment{}, err
	}
	leg, rerr := r.computeLeg(ctx, resolved.Origin, resolved.Destination, resolved.Waypoints)
	if rerr != nil {
		return Segment{}, fmt.Errorf("after resolving endpoints: %w", rerr)
	}

	seg := newSegment(resolved, leg)
	seg.ResolvedFrom = res
	return seg, nil
}

// resolve replaces each endpoint the resolver can place, skipping fixed
// ones. It returns nil when neither endpoint resolved.
func (r *run) resolve(ctx context.Context, req SegmentRequest, fixed fixedEnds) (*Resolution, SegmentRequest) {
	res := &Resolution{OriginalOrigin: req.Origin, OriginalDestination: req.Destination}
	out := req
	if !fixed.origin {
		if m, ok := r.nearestTown(ctx, req.Origin); ok {
			res.Origin, out.Origin = &m, m.Name
		}
	}
	if !fixed.destination {
		if m, ok := r.nearestTown(ctx, req.Destination); ok {
			res.Destination, out.Destination = &m, m.Name
		}
	}
	if res.Origin == nil && res.Destination == nil {
		return nil, req
	}
	return res, out
}

// nearestTown resolves one endpoint. Endpoints that already geocode to a
// town are left alone.
func (r *run) nearestTown(ctx context.Context, raw string) (TownMatch, bool) {
	if r.svc.resolver.IsTown(ctx, raw) {
		return TownMatch{}, false
	}
	m, err := r.svc.resolver.FindNearestTown(ctx, raw)
	if err != nil || m.Name == "" || strings.EqualFold(m.Name, raw) {
		return TownMatch{}, false
	}
	return m, true
}

// process validates seg and appends it, or its decomposition, to the plan.
func (r *run) process(ctx context.Context, seg Segment, depth int) {
	v := Validate(seg.leg(), r.prefs)
	seg.Valid, seg.Issues, seg.SuggestedSplits = v.Valid, v.Issues, v.SuggestedSplits
	if v.Valid || !r.decompose {
		r.segments = append(r.segments, seg)
		return
	}

	if depth >= r.svc.cfg.MaxSplitDepth {
		r.exhausted(seg, fmt.Errorf("%w: split depth %d reached", ErrDecompositionExhausted, depth))
		return
	}
	children := r.split(ctx, seg, v)
	if len(children) == 0 {
		r.exhausted(seg, fmt.Errorf("%w: no intermediate stops found", ErrDecompositionExhausted))
		return
	}
	r.svc.logger.Debug("routeplan: split",
		zap.String("origin", seg.Origin),
		zap.String("destination", seg.Destination),
		zap.Int("parts", len(children)),
		zap.Int("depth", depth))
	for _, c := range children {
		r.process(ctx, c, depth+1)
	}
}

func (r *run) exhausted(seg Segment, err error) {
	r.svc.logger.Warn("routeplan: keeping invalid segment",
		zap.String("origin", seg.Origin),
		zap.String("destination", seg.Destination),
		zap.Error(err))
	r.warnings = append(r.warnings, fmt.Sprintf("Segment %s to %s still exceeds daily limits (%v)", seg.Origin, seg.Destination, err))
	r.segments = append(r.segments, seg)
}

func (r *run) fail(msg string) {
	r.svc.logger.Warn("routeplan: segment failed", zap.String("reason", msg))
	r.warnings = append(r.warnings, msg)
	r.errs = append(r.errs, msg)
}

func (r *run) denied(err error) *RoutePlan {
	return &RoutePlan{
		ID:          r.svc.newID(),
		Success:     false,
		Segments:    []Segment{},
		Warnings:    []string{"Maps API key was rejected; it must allow server-side directions requests"},
		Errors:      []string{err.Error()},
		Preferences: r.prefs,
		CreatedAt:   r.svc.now(),
	}
}

func (r *run) finish() *RoutePlan {
	plan := &RoutePlan{
		ID:          r.svc.newID(),
		Success:     len(r.segments) > 0,
		Segments:    r.segments,
		Warnings:    r.warnings,
		Errors:      r.errs,
		Preferences: r.prefs,
		CreatedAt:   r.svc.now(),
	}
	if !plan.Success {
		plan.Segments = []Segment{}
		plan.Errors = append(plan.Errors, ErrNoSegments.Error())
	}
	plan.Summary = Summarize(plan.Segments)
	return plan
}

func newSegment(req SegmentRequest, leg maps.Leg) Segment {
	return Segment{
		Origin:          req.Origin,
		Destination:     req.Destination,
		Waypoints:       req.Waypoints,
		DistanceKm:      leg.DistanceKm,
		DurationHours:   leg.DurationHours,
		DistanceText:    leg.DistanceText,
		DurationText:    leg.DurationText,
		RouteID:         leg.RouteID,
		Issues:          []string{},
		SuggestedSplits: []SplitPoint{},
	}
}

func (s Segment) leg() maps.Leg {
	return maps.Leg{
		Origin:        s.Origin,
		Destination:   s.Destination,
		DistanceKm:    s.DistanceKm,
		DurationHours: s.DurationHours,
		DistanceText:  s.DistanceText,
		DurationText:  s.DurationText,
		RouteID:       s.RouteID,
	}
}

func resolutionNote(res *Resolution) string {
	var notes []string
	if res.Origin != nil {
		notes = append(notes, fmt.Sprintf("Origin '%s' resolved to '%s' (%.1f km away)",
			res.OriginalOrigin, res.Origin.Name, res.Origin.DistanceKm))
	}
	if res.Destination != nil {
		notes = append(notes, fmt.Sprintf("Destination '%s' resolved to '%s' (%.1f km away)",
			res.OriginalDestination, res.Destination.Name, res.Destination.DistanceKm))
	}
	return strings.Join(notes, "; ")
}
