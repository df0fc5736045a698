package maps

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"roadtrip/internal/geo"
)

// maxSearchRadiusMeters is the Places API limit for a location-biased search.
const maxSearchRadiusMeters = 50000

// townTypes are the place types accepted as overnight stop candidates.
var townTypes = map[string]bool{
	"locality":                    true,
	"sublocality":                 true,
	"postal_town":                 true,
	"administrative_area_level_3": true,
}

// TextSearcher is the subset of *maps.Client used by PlacesService.
type TextSearcher interface {
	TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error)
}

// PlacesService finds towns near a point through the Google Places API.
type PlacesService struct {
	client   TextSearcher
	language string
	logger   *zap.Logger
}

// NewPlacesService creates a PlacesService.
func NewPlacesService(client TextSearcher, language string, logger *zap.Logger) *PlacesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlacesService{client: client, language: language, logger: logger}
}

// TownsNear returns towns around p within radiusKm. Results that are not
// settlements (parks, businesses) are dropped.
func (s *PlacesService) TownsNear(ctx context.Context, p geo.Point, radiusKm float64) ([]Place, error) {
	radius := uint(math.Min(radiusKm*1000, maxSearchRadiusMeters))
	r := &maps.TextSearchRequest{
		Query:    "town",
		Location: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
		Radius:   radius,
		Language: s.language,
	}

	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		s.logger.Warn("maps: places search", zap.Stringer("point", p), zap.Error(err))
		return nil, classify("places", err)
	}

	var places []Place
	for _, res := range resp.Results {
		if !isTown(res.Types) {
			continue
		}
		places = append(places, Place{
			Name:    res.Name,
			Address: res.FormattedAddress,
			Point:   geo.Point{Lat: res.Geometry.Location.Lat, Lng: res.Geometry.Location.Lng},
			PlaceID: res.PlaceID,
			Types:   res.Types,
		})
	}
	s.logger.Debug("maps: places search",
		zap.Stringer("point", p),
		zap.Int("results", len(resp.Results)),
		zap.Int("towns", len(places)))
	if len(places) == 0 {
		return nil, fmt.Errorf("places: %w: no towns near %s", ErrNoResults, p)
	}
	return places, nil
}

func isTown(types []string) bool {
	for _, t := range types {
		if townTypes[t] {
			return true
		}
	}
	return false
}
