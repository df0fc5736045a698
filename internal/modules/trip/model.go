// README: Trip route state: what the conversation has settled so far, merged turn by turn.
package trip

import (
	"errors"
	"strings"
	"time"

	"roadtrip/internal/modules/extract"
	"roadtrip/internal/modules/routeplan"
)

var (
	ErrNotFound      = errors.New("trip not found")
	ErrInvalidTripID = errors.New("invalid trip id")
)

// RouteState is the route-related state of one trip. The With* methods
// return a modified copy and never mutate the receiver.
type RouteState struct {
	TripID       string                `json:"trip_id"`
	Origin       string                `json:"origin"`
	Destinations []string              `json:"destinations"`
	Preferences  routeplan.Preferences `json:"preferences"`
	CurrentPlan  *routeplan.RoutePlan  `json:"current_plan,omitempty"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func New(tripID string) RouteState {
	return RouteState{TripID: tripID}
}

// ValidID reports whether id can name a trip.
func ValidID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && len(id) <= 128
}

// WithExtraction stores the chain of e and merges its preferences.
func (s RouteState) WithExtraction(e *extract.Extraction) RouteState {
	if e == nil {
		return s
	}
	out := s.WithChain(e.Chain())
	if e.HasPrefs {
		out = out.WithPreferences(e.Preferences)
	}
	return out
}

// WithChain replaces origin and destinations. Chains shorter than two
// locations leave the state unchanged.
func (s RouteState) WithChain(chain []string) RouteState {
	if len(chain) < 2 {
		return s
	}
	out := s
	out.Origin = chain[0]
	out.Destinations = append([]string(nil), chain[1:]...)
	return out
}

func (s RouteState) WithPreferences(p routeplan.Preferences) RouteState {
	out := s
	out.Preferences = s.Preferences.Merge(p)
	return out
}

// WithPlan replaces the current plan wholesale.
func (s RouteState) WithPlan(p *routeplan.RoutePlan) RouteState {
	out := s
	out.CurrentPlan = p
	return out
}

// Chain returns the origin followed by the destinations.
func (s RouteState) Chain() []string {
	if s.Origin == "" {
		return append([]string(nil), s.Destinations...)
	}
	return append([]string{s.Origin}, s.Destinations...)
}

// Prior is the view of the state the extractor reads.
func (s RouteState) Prior() extract.Prior {
	return extract.Prior{
		Origin:       s.Origin,
		Destinations: append([]string(nil), s.Destinations...),
	}
}
