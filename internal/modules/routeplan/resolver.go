package routeplan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"roadtrip/internal/geo"
	"roadtrip/internal/maps"
)

// townResultTypes restricts reverse geocoding to settlements and
// administrative areas.
var townResultTypes = []string{"locality", "administrative_area_level_1", "administrative_area_level_2"}

// GeocodingProvider resolves place text to coordinates and back.
type GeocodingProvider interface {
	Geocode(ctx context.Context, text string) (maps.GeocodeResult, error)
	ReverseGeocode(ctx context.Context, p geo.Point, resultTypes []string) ([]maps.GeocodeResult, error)
}

// Resolver maps locations the directions provider cannot route to the
// nearest recognised town. Geocodes and resolutions are memoised.
type Resolver struct {
	geocoder GeocodingProvider
	timeout  time.Duration
	cache    *cache.Cache
	logger   *zap.Logger
}

// NewResolver creates a Resolver. timeout bounds every geocoding call; zero
// leaves calls bounded by the caller's context only.
func NewResolver(geocoder GeocodingProvider, timeout time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		geocoder: geocoder,
		timeout:  timeout,
		cache:    cache.New(24*time.Hour, time.Hour),
		logger:   logger,
	}
}

// Geocode returns the coordinates of text.
func (r *Resolver) Geocode(ctx context.Context, text string) (maps.GeocodeResult, error) {
	key := "geocode:" + strings.ToLower(strings.TrimSpace(text))
	if v, ok := r.cache.Get(key); ok {
		return v.(maps.GeocodeResult), nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()
	res, err := r.geocoder.Geocode(ctx, text)
	if err != nil {
		return maps.GeocodeResult{}, err
	}
	r.cache.SetDefault(key, res)
	return res, nil
}

// FindNearestTown geocodes raw and reverse-geocodes the result to the best
// ranked locality or administrative area.
func (r *Resolver) FindNearestTown(ctx context.Context, raw string) (TownMatch, error) {
	if strings.TrimSpace(raw) == "" {
		return TownMatch{}, fmt.Errorf("find nearest town: %w: empty location", ErrBadRequest)
	}
	key := "town:" + strings.ToLower(strings.TrimSpace(raw))
	if v, ok := r.cache.Get(key); ok {
		return v.(TownMatch), nil
	}

	origin, err := r.Geocode(ctx, raw)
	if err != nil {
		r.logger.Warn("routeplan: resolve geocode", zap.String("location", raw), zap.Error(err))
		return TownMatch{}, fmt.Errorf("find nearest town %q: %w", raw, err)
	}

	rctx, cancel := r.bound(ctx)
	defer cancel()
	results, err := r.geocoder.ReverseGeocode(rctx, origin.Point, townResultTypes)
	if err != nil {
		r.logger.Warn("routeplan: resolve reverse geocode", zap.String("location", raw), zap.Error(err))
		return TownMatch{}, fmt.Errorf("find nearest town %q: %w", raw, err)
	}
	if len(results) == 0 {
		return TownMatch{}, fmt.Errorf("find nearest town %q: %w", raw, maps.ErrNoResults)
	}

	best, confidence := rankTowns(results)
	match := TownMatch{
		Name:        best.FormattedAddress,
		Coordinates: best.Point,
		Confidence:  confidence,
		DistanceKm:  geo.HaversineKm(origin.Point, best.Point),
	}
	r.logger.Info("routeplan: resolved location",
		zap.String("location", raw),
		zap.String("town", match.Name),
		zap.String("confidence", string(match.Confidence)),
		zap.Float64("distance_km", match.DistanceKm))
	r.cache.SetDefault(key, match)
	return match, nil
}

// IsTown reports whether raw geocodes to a locality, meaning the provider
// already knows it as a town and resolution would not change it.
func (r *Resolver) IsTown(ctx context.Context, raw string) bool {
	res, err := r.Geocode(ctx, raw)
	return err == nil && res.HasType("locality")
}

// rankTowns picks a locality over a first-level area over a second-level
// area, falling back to the first result.
func rankTowns(results []maps.GeocodeResult) (maps.GeocodeResult, Confidence) {
	ranks := []struct {
		typ        string
		confidence Confidence
	}{
		{"locality", ConfidenceHigh},
		{"administrative_area_level_1", ConfidenceMedium},
		{"administrative_area_level_2", ConfidenceLow},
	}
	for _, rank := range ranks {
		for _, res := range results {
			if res.HasType(rank.typ) {
				return res, rank.confidence
			}
		}
	}
	return results[0], ConfidenceLowest
}

// NameStop names the point at fraction of the great-circle path from one
// place to another after the locality found there. ok is false when either
// end cannot be geocoded or nothing is found at the point.
func (r *Resolver) NameStop(ctx context.Context, from, to string, fraction float64) (name string, ok bool) {
	a, err := r.Geocode(ctx, from)
	if err != nil {
		return "", false
	}
	b, err := r.Geocode(ctx, to)
	if err != nil {
		return "", false
	}
	p := geo.Interpolate(a.Point, b.Point, fraction)

	key := "stop:" + p.String()
	if v, ok := r.cache.Get(key); ok {
		return v.(string), true
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()
	results, err := r.geocoder.ReverseGeocode(ctx, p, []string{"locality"})
	if err != nil || len(results) == 0 {
		r.logger.Debug("routeplan: no locality at split point", zap.Stringer("point", p), zap.Error(err))
		return "", false
	}
	best, _ := rankTowns(results)
	if best.FormattedAddress == "" {
		return "", false
	}
	r.cache.SetDefault(key, best.FormattedAddress)
	return best.FormattedAddress, true
}

func (r *Resolver) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
