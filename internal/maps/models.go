package maps

import (
	"context"

	"roadtrip/internal/geo"
)

// Leg is the result of one directions computation between two named points.
type Leg struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DistanceKm    float64 `json:"distance_km"`
	DurationHours float64 `json:"duration_hours"`
	DistanceText  string  `json:"distance_text"`
	DurationText  string  `json:"duration_text"`
	RouteID       string  `json:"route_id"`
	StartAddress  string  `json:"start_address,omitempty"`
	EndAddress    string  `json:"end_address,omitempty"`
}

// LegOptions tunes a directions request.
type LegOptions struct {
	Waypoints []string
	// Avoid holds normalised avoidance terms: tolls, highways, ferries, unpaved.
	Avoid []string
}

// LegComputer computes a single driving leg.
type LegComputer interface {
	ComputeLeg(ctx context.Context, origin, destination string, opts LegOptions) (Leg, error)
}

// GeocodeResult is a simplified geocoding or reverse-geocoding result.
type GeocodeResult struct {
	Point            geo.Point `json:"point"`
	FormattedAddress string    `json:"formatted_address"`
	Types            []string  `json:"types"`
	PlaceID          string    `json:"place_id"`
}

// HasType reports whether the result carries the given Google result type.
func (r GeocodeResult) HasType(t string) bool {
	for _, v := range r.Types {
		if v == t {
			return true
		}
	}
	return false
}

// Place represents a simplified places search result.
type Place struct {
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Point   geo.Point `json:"point"`
	PlaceID string    `json:"place_id"`
	Types   []string  `json:"types"`
}
