package routeplan

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"roadtrip/internal/geo"
	"roadtrip/internal/maps"
)

// detourTolerance is how much longer, relative to the direct distance, a path
// through a candidate town may be before the town counts as off-route.
const detourTolerance = 0.1

// split replaces an over-limit segment with a chain of shorter ones: through
// the validator's split points, through real towns found near the route, or
// through evenly spaced placeholder stops.
func (r *run) split(ctx context.Context, parent Segment, v Validation) []Segment {
	if len(v.SuggestedSplits) > 0 {
		return r.splitAlong(ctx, parent, v.SuggestedSplits)
	}
	if segs := r.discoverStops(ctx, parent, v); len(segs) > 0 {
		return segs
	}
	days := v.DaysNeeded
	if days < 2 {
		days = 2
	}
	return r.splitAlong(ctx, parent, proportionalSplits(parent.DistanceKm, parent.DurationHours, days))
}

// splitAlong chains parent through one stop per split point. Each slice is
// computed like a requested segment, so an unknown stop may be resolved to a
// nearby town; when that fails or does not shorten the parent the slice's
// proportional estimate is used.
func (r *run) splitAlong(ctx context.Context, parent Segment, splits []SplitPoint) []Segment {
	if parent.DistanceKm <= 0 || parent.DurationHours <= 0 {
		return nil
	}

	names := []string{parent.Origin}
	kms := []float64{0}
	hours := []float64{0}
	for _, sp := range splits {
		names = append(names, r.nameStop(ctx, parent, sp, names))
		kms = append(kms, sp.DistanceFromOriginKm)
		hours = append(hours, sp.HoursFromOrigin)
	}
	names = append(names, parent.Destination)
	kms = append(kms, parent.DistanceKm)
	hours = append(hours, parent.DurationHours)

	out := make([]Segment, 0, len(names)-1)
	origin := parent.Origin
	for i := 0; i+1 < len(names); i++ {
		req := SegmentRequest{Origin: origin, Destination: names[i+1]}
		est := estimatedLeg(req, kms[i+1]-kms[i], hours[i+1]-hours[i])
		fixed := fixedEnds{origin: true, destination: i+2 == len(names)}
		seg := r.subSegment(ctx, req, fixed, est, parent)
		out = append(out, seg)
		origin = seg.Destination
	}
	return out
}

func (r *run) subSegment(ctx context.Context, req SegmentRequest, fixed fixedEnds, est maps.Leg, parent Segment) Segment {
	seg, err := r.compute(ctx, req, fixed)
	switch {
	case err != nil:
		r.warnings = append(r.warnings, fmt.Sprintf("Leg %s to %s estimated from the full route (%v)", req.Origin, req.Destination, err))
	case !shrinks(seg.DistanceKm, seg.DurationHours, parent):
		r.warnings = append(r.warnings, fmt.Sprintf("Leg %s to %s estimated from the full route (routed leg was not shorter)", req.Origin, req.Destination))
	default:
		if seg.ResolvedFrom != nil {
			r.warnings = append(r.warnings, resolutionNote(seg.ResolvedFrom))
		}
		return seg
	}
	seg = newSegment(req, est)
	seg.Estimated = true
	return seg
}

// nameStop names a split point after the locality found there, or a
// numbered placeholder when none can be found.
func (r *run) nameStop(ctx context.Context, parent Segment, sp SplitPoint, taken []string) string {
	if r.svc.resolver != nil {
		fraction := 0.0
		switch {
		case parent.DistanceKm > 0:
			fraction = sp.DistanceFromOriginKm / parent.DistanceKm
		case parent.DurationHours > 0:
			fraction = sp.HoursFromOrigin / parent.DurationHours
		}
		if name, ok := r.svc.resolver.NameStop(ctx, parent.Origin, parent.Destination, fraction); ok &&
			!strings.EqualFold(name, parent.Destination) && !containsFold(taken, name) {
			return name
		}
	}
	r.stopSeq++
	return fmt.Sprintf("Intermediate stop %d (along route)", r.stopSeq)
}

// discoverStops looks for real towns around evenly spaced points of the
// straight path between the segment's ends. Candidates must be reachable
// within the daily distance limit from the origin and to the destination.
// The chain is rejected unless every routed leg is shorter than parent.
func (r *run) discoverStops(ctx context.Context, parent Segment, v Validation) []Segment {
	if r.svc.stops == nil || r.svc.resolver == nil {
		return nil
	}
	from, err := r.svc.resolver.Geocode(ctx, parent.Origin)
	if err != nil {
		return nil
	}
	to, err := r.svc.resolver.Geocode(ctx, parent.Destination)
	if err != nil {
		return nil
	}
	direct := geo.HaversineKm(from.Point, to.Point)
	if direct <= 0 {
		return nil
	}

	probes := v.DaysNeeded
	if probes < 2 {
		probes = 2
	}
	radius := math.Max(direct/float64(2*probes), 5)

	type candidate struct {
		name       string
		fromOrigin float64
	}
	var picked []candidate
	for k := 1; k < probes; k++ {
		probe := geo.Interpolate(from.Point, to.Point, float64(k)/float64(probes))
		pctx, cancel := context.WithTimeout(ctx, r.svc.cfg.CallTimeout)
		towns, err := r.svc.stops.TownsNear(pctx, probe, radius)
		cancel()
		if err != nil {
			r.svc.logger.Debug("routeplan: no towns near probe", zap.Stringer("point", probe), zap.Error(err))
			continue
		}

		var best *maps.Place
		bestDist := math.Inf(1)
		for i := range towns {
			t := &towns[i]
			a, b := geo.HaversineKm(from.Point, t.Point), geo.HaversineKm(t.Point, to.Point)
			if a > r.prefs.MaxDailyDistanceKm || b > r.prefs.MaxDailyDistanceKm {
				continue
			}
			if (a+b-direct)/direct > detourTolerance || a < 1 || b < 1 {
				continue
			}
			if d := geo.HaversineKm(probe, t.Point); d < bestDist {
				best, bestDist = t, d
			}
		}
		if best != nil {
			picked = append(picked, candidate{name: placeName(*best), fromOrigin: geo.HaversineKm(from.Point, best.Point)})
		}
	}
	geo.SortByDistance(picked, func(c candidate) float64 { return c.fromOrigin })

	names := []string{parent.Origin}
	for _, c := range picked {
		if !containsFold(names, c.name) && !strings.EqualFold(c.name, parent.Destination) {
			names = append(names, c.name)
		}
	}
	if len(names) == 1 {
		return nil
	}
	names = append(names, parent.Destination)

	out := make([]Segment, 0, len(names)-1)
	for i := 0; i+1 < len(names); i++ {
		req := SegmentRequest{Origin: names[i], Destination: names[i+1]}
		leg, err := r.computeLeg(ctx, req.Origin, req.Destination, nil)
		if err != nil || !shrinks(leg.DistanceKm, leg.DurationHours, parent) {
			r.svc.logger.Debug("routeplan: discovered stops rejected",
				zap.String("origin", req.Origin),
				zap.String("destination", req.Destination),
				zap.Error(err))
			return nil
		}
		out = append(out, newSegment(req, leg))
	}
	return out
}

func placeName(p maps.Place) string {
	if p.Address != "" {
		return p.Address
	}
	return p.Name
}

func estimatedLeg(req SegmentRequest, km, hours float64) maps.Leg {
	return maps.Leg{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DistanceKm:    km,
		DurationHours: hours,
		DistanceText:  "~" + maps.FormatDistance(km),
		DurationText:  "~" + maps.FormatDuration(hours),
		RouteID:       maps.RouteID(req.Origin, req.Destination, km*1000, time.Duration(hours*float64(time.Hour))),
	}
}

// shrinks reports whether a leg is strictly shorter than parent in both
// distance and duration.
func shrinks(km, hours float64, parent Segment) bool {
	return km < parent.DistanceKm && hours < parent.DurationHours
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
