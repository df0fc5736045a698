package routeplan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"roadtrip/internal/geo"
	"roadtrip/internal/maps"
)

// stubDirections answers from a fixed table keyed "origin|destination".
// Unknown pairs go to fallback, or fail with ErrNoResults. Pairs in hang
// block until the call's context is done.
type stubDirections struct {
	legs     map[string]maps.Leg
	errs     map[string]error
	hang     map[string]bool
	fallback func(origin, destination string) (maps.Leg, error)
	calls    []string
}

func newStubDirections() *stubDirections {
	return &stubDirections{legs: map[string]maps.Leg{}, errs: map[string]error{}, hang: map[string]bool{}}
}

func (s *stubDirections) add(origin, destination string, hours, km float64) *stubDirections {
	s.legs[origin+"|"+destination] = testLeg(origin, destination, hours, km)
	return s
}

func (s *stubDirections) ComputeLeg(ctx context.Context, origin, destination string, _ maps.LegOptions) (maps.Leg, error) {
	key := origin + "|" + destination
	s.calls = append(s.calls, key)
	if s.hang[key] {
		<-ctx.Done()
		return maps.Leg{}, ctx.Err()
	}
	if err, ok := s.errs[key]; ok {
		return maps.Leg{}, err
	}
	if leg, ok := s.legs[key]; ok {
		return leg, nil
	}
	if s.fallback != nil {
		return s.fallback(origin, destination)
	}
	return maps.Leg{}, fmt.Errorf("directions: %w", maps.ErrNoResults)
}

func testLeg(origin, destination string, hours, km float64) maps.Leg {
	return maps.Leg{
		Origin:        origin,
		Destination:   destination,
		DistanceKm:    km,
		DurationHours: hours,
		DistanceText:  maps.FormatDistance(km),
		DurationText:  maps.FormatDuration(hours),
		RouteID:       maps.RouteID(origin, destination, km*1000, time.Duration(hours*float64(time.Hour))),
	}
}

// stubGeocoder geocodes from a fixed table and reverse geocodes through fn.
type stubGeocoder struct {
	places       map[string]maps.GeocodeResult
	reverse      func(p geo.Point, resultTypes []string) []maps.GeocodeResult
	geocodeCalls int
	reverseCalls int
}

func (s *stubGeocoder) Geocode(_ context.Context, text string) (maps.GeocodeResult, error) {
	s.geocodeCalls++
	if res, ok := s.places[strings.ToLower(text)]; ok {
		return res, nil
	}
	return maps.GeocodeResult{}, fmt.Errorf("geocode: %w", maps.ErrNoResults)
}

func (s *stubGeocoder) ReverseGeocode(_ context.Context, p geo.Point, resultTypes []string) ([]maps.GeocodeResult, error) {
	s.reverseCalls++
	if s.reverse == nil {
		return nil, fmt.Errorf("reverse geocode: %w", maps.ErrNoResults)
	}
	res := s.reverse(p, resultTypes)
	if len(res) == 0 {
		return nil, fmt.Errorf("reverse geocode: %w", maps.ErrNoResults)
	}
	return res, nil
}

func place(addr string, lat, lng float64, types ...string) maps.GeocodeResult {
	return maps.GeocodeResult{FormattedAddress: addr, Point: geo.Point{Lat: lat, Lng: lng}, Types: types}
}

type stubStops struct {
	towns []maps.Place
	calls int
}

func (s *stubStops) TownsNear(_ context.Context, p geo.Point, radiusKm float64) ([]maps.Place, error) {
	s.calls++
	var out []maps.Place
	for _, t := range s.towns {
		if geo.HaversineKm(p, t.Point) <= radiusKm {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, maps.ErrNoResults
	}
	return out, nil
}

var fixedTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService(d DirectionsProvider, opts ...Option) *Service {
	cfg := DefaultConfig()
	cfg.CallDelay = 0
	opts = append([]Option{
		WithIDFunc(func() string { return "plan-1" }),
		WithClock(func() time.Time { return fixedTime }),
	}, opts...)
	return NewService(d, cfg, opts...)
}
