package maps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// Directioner is the subset of *maps.Client used by RouteService.
type Directioner interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// RouteService handles driving directions through the Google Directions API.
type RouteService struct {
	client   Directioner
	language string
	region   string
	logger   *zap.Logger
}

// NewRouteService creates a RouteService. language and region bias the
// provider's address text and may be empty.
func NewRouteService(client Directioner, language, region string, logger *zap.Logger) *RouteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteService{client: client, language: language, region: region, logger: logger}
}

// ComputeLeg returns the driving leg from origin to destination. Legs through
// waypoints are summed into one.
func (s *RouteService) ComputeLeg(ctx context.Context, origin, destination string, opts LegOptions) (Leg, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Units:       maps.UnitsMetric,
		Waypoints:   opts.Waypoints,
		Avoid:       s.avoidances(opts.Avoid),
		Language:    s.language,
		Region:      s.region,
	}

	start := time.Now()
	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		s.logger.Warn("maps: directions",
			zap.String("origin", origin),
			zap.String("destination", destination),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return Leg{}, classify("directions", err)
	}
	if len(routes) == 0 {
		return Leg{}, fmt.Errorf("directions: %w: no route from %q to %q", ErrNoResults, origin, destination)
	}

	leg, err := legFromRoute(routes[0], origin, destination)
	if err != nil {
		return Leg{}, err
	}
	s.logger.Debug("maps: directions",
		zap.String("origin", origin),
		zap.String("destination", destination),
		zap.Float64("distance_km", leg.DistanceKm),
		zap.Float64("duration_hours", leg.DurationHours),
		zap.Duration("elapsed", time.Since(start)))
	return leg, nil
}

func legFromRoute(route maps.Route, origin, destination string) (Leg, error) {
	if len(route.Legs) == 0 {
		return Leg{}, fmt.Errorf("directions: %w: route without legs from %q to %q", ErrNoResults, origin, destination)
	}

	var meters int
	var duration time.Duration
	for _, l := range route.Legs {
		meters += l.Distance.Meters
		duration += l.Duration
	}

	first, last := route.Legs[0], route.Legs[len(route.Legs)-1]
	km := float64(meters) / 1000
	hours := duration.Hours()

	distanceText, durationText := FormatDistance(km), FormatDuration(hours)
	if len(route.Legs) == 1 && first.Distance.HumanReadable != "" {
		distanceText = first.Distance.HumanReadable
	}

	return Leg{
		Origin:        origin,
		Destination:   destination,
		DistanceKm:    km,
		DurationHours: hours,
		DistanceText:  distanceText,
		DurationText:  durationText,
		RouteID:       RouteID(origin, destination, float64(meters), duration),
		StartAddress:  first.StartAddress,
		EndAddress:    last.EndAddress,
	}, nil
}

func (s *RouteService) avoidances(terms []string) []maps.Avoid {
	var out []maps.Avoid
	for _, t := range terms {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "tolls":
			out = append(out, maps.AvoidTolls)
		case "highways":
			out = append(out, maps.AvoidHighways)
		case "ferries":
			out = append(out, maps.AvoidFerries)
		default:
			// Directions has no avoid flag for unpaved roads.
			s.logger.Debug("maps: unsupported avoid term", zap.String("term", t))
		}
	}
	return out
}
