package maps

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"roadtrip/internal/geo"
)

// Geocoder is the subset of *maps.Client used by GeocodingService.
type Geocoder interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GeocodingService turns place text into coordinates and back.
type GeocodingService struct {
	client   Geocoder
	language string
	logger   *zap.Logger
}

// NewGeocodingService creates a GeocodingService.
func NewGeocodingService(client Geocoder, language string, logger *zap.Logger) *GeocodingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeocodingService{client: client, language: language, logger: logger}
}

// Geocode returns the best match for the given place text.
func (s *GeocodingService) Geocode(ctx context.Context, text string) (GeocodeResult, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{Address: text, Language: s.language})
	if err != nil {
		s.logger.Warn("maps: geocode", zap.String("query", text), zap.Error(err))
		return GeocodeResult{}, classify("geocode", err)
	}
	if len(results) == 0 {
		return GeocodeResult{}, fmt.Errorf("geocode: %w: %q", ErrNoResults, text)
	}
	return toGeocodeResult(results[0]), nil
}

// ReverseGeocode returns the results describing the given point, restricted to
// resultTypes when any are given.
func (s *GeocodingService) ReverseGeocode(ctx context.Context, p geo.Point, resultTypes []string) ([]GeocodeResult, error) {
	r := &maps.GeocodingRequest{
		LatLng:     &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
		ResultType: resultTypes,
		Language:   s.language,
	}
	results, err := s.client.ReverseGeocode(ctx, r)
	if err != nil {
		s.logger.Warn("maps: reverse geocode", zap.Stringer("point", p), zap.Error(err))
		return nil, classify("reverse geocode", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("reverse geocode: %w: %s", ErrNoResults, p)
	}

	out := make([]GeocodeResult, 0, len(results))
	for _, res := range results {
		out = append(out, toGeocodeResult(res))
	}
	return out, nil
}

func toGeocodeResult(r maps.GeocodingResult) GeocodeResult {
	return GeocodeResult{
		Point:            geo.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		FormattedAddress: r.FormattedAddress,
		Types:            r.Types,
		PlaceID:          r.PlaceID,
	}
}
