// README: Route plan data model: preferences, requests, segments and the plan itself.
package routeplan

import (
	"errors"
	"strings"
	"time"

	"roadtrip/internal/geo"
)

var (
	ErrBadRequest             = errors.New("bad request")
	ErrDecompositionExhausted = errors.New("decomposition exhausted")
	ErrNoSegments             = errors.New("no routes could be calculated successfully")
)

// Preferences are the per-day driving limits of a trip. Zero limits mean
// "unset" and are filled from defaults by Effective.
type Preferences struct {
	MaxDailyDriveHours float64  `json:"max_daily_drive_hours"`
	MaxDailyDistanceKm float64  `json:"max_daily_distance_km"`
	Avoid              []string `json:"avoid,omitempty"`
	DaytimeOnly        bool     `json:"daytime_only"`
}

// DefaultPreferences are used when neither the trip nor the configuration
// sets a limit.
var DefaultPreferences = Preferences{MaxDailyDriveHours: 8, MaxDailyDistanceKm: 800}

// WithDefaults returns the preferences with unset limits taken from
// DefaultPreferences.
func (p Preferences) WithDefaults() Preferences {
	return p.Effective(DefaultPreferences)
}

// Effective returns the preferences with unset limits taken from defaults,
// and from DefaultPreferences where defaults are unset too.
func (p Preferences) Effective(defaults Preferences) Preferences {
	out := p
	if out.MaxDailyDriveHours <= 0 {
		out.MaxDailyDriveHours = defaults.MaxDailyDriveHours
	}
	if out.MaxDailyDriveHours <= 0 {
		out.MaxDailyDriveHours = DefaultPreferences.MaxDailyDriveHours
	}
	if out.MaxDailyDistanceKm <= 0 {
		out.MaxDailyDistanceKm = defaults.MaxDailyDistanceKm
	}
	if out.MaxDailyDistanceKm <= 0 {
		out.MaxDailyDistanceKm = DefaultPreferences.MaxDailyDistanceKm
	}
	out.Avoid = normalizeAvoid(out.Avoid)
	return out
}

// Merge overlays the set fields of next onto p. Avoidance terms accumulate.
func (p Preferences) Merge(next Preferences) Preferences {
	out := p
	if next.MaxDailyDriveHours > 0 {
		out.MaxDailyDriveHours = next.MaxDailyDriveHours
	}
	if next.MaxDailyDistanceKm > 0 {
		out.MaxDailyDistanceKm = next.MaxDailyDistanceKm
	}
	if next.DaytimeOnly {
		out.DaytimeOnly = true
	}
	out.Avoid = normalizeAvoid(append(append([]string(nil), p.Avoid...), next.Avoid...))
	return out
}

func normalizeAvoid(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

type SegmentRequest struct {
	Origin      string   `json:"origin" validate:"required"`
	Destination string   `json:"destination" validate:"required"`
	Waypoints   []string `json:"waypoints,omitempty"`
}

type SplitPoint struct {
	Day                  int     `json:"day"`
	StopLocation         string  `json:"stop_location"`
	DistanceFromOriginKm float64 `json:"distance_from_origin_km"`
	HoursFromOrigin      float64 `json:"hours_from_origin"`
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceLowest Confidence = "lowest"
)

// TownMatch is the nearest recognised town for a location the directions
// provider could not route.
type TownMatch struct {
	Name        string     `json:"name"`
	Coordinates geo.Point  `json:"coordinates"`
	Confidence  Confidence `json:"confidence"`
	DistanceKm  float64    `json:"distance_km"`
}

// Resolution records which endpoints of a segment were replaced by a town.
type Resolution struct {
	OriginalOrigin      string     `json:"original_origin"`
	OriginalDestination string     `json:"original_destination"`
	Origin              *TownMatch `json:"origin,omitempty"`
	Destination         *TownMatch `json:"destination,omitempty"`
}

type Segment struct {
	Origin          string       `json:"origin"`
	Destination     string       `json:"destination"`
	Waypoints       []string     `json:"waypoints,omitempty"`
	DistanceKm      float64      `json:"distance_km"`
	DurationHours   float64      `json:"duration_hours"`
	DistanceText    string       `json:"distance_text"`
	DurationText    string       `json:"duration_text"`
	RouteID         string       `json:"route_id"`
	Estimated       bool         `json:"estimated,omitempty"`
	Valid           bool         `json:"valid"`
	Issues          []string     `json:"issues"`
	SuggestedSplits []SplitPoint `json:"suggested_splits"`
	ResolvedFrom    *Resolution  `json:"resolved_from,omitempty"`
}

type Summary struct {
	TotalSegments             int     `json:"total_segments"`
	TotalDistanceKm           float64 `json:"total_distance_km"`
	TotalDurationHours        float64 `json:"total_duration_hours"`
	ValidSegments             int     `json:"valid_segments"`
	InvalidSegments           int     `json:"invalid_segments"`
	ResolvedSegments          int     `json:"resolved_segments"`
	AverageDistancePerSegment float64 `json:"average_distance_per_segment"`
	AverageDurationPerSegment float64 `json:"average_duration_per_segment"`
}

type RoutePlan struct {
	ID          string      `json:"id"`
	Success     bool        `json:"success"`
	Segments    []Segment   `json:"segments"`
	Summary     Summary     `json:"summary"`
	Warnings    []string    `json:"warnings"`
	Errors      []string    `json:"errors,omitempty"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Recommendation is advice derived from a finished plan.
type Recommendation struct {
	Type       string   `json:"type"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Segments   []string `json:"segments,omitempty"`
}
