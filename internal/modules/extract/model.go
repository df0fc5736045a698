// README: Request extraction model: prior trip context, strategies and their output.
package extract

import (
	"context"
	"strings"

	"roadtrip/internal/modules/routeplan"
)

// Prior is the route chain earlier turns stored for the trip.
type Prior struct {
	Origin       string
	Destinations []string
}

// Input is handed to every strategy.
type Input struct {
	Message string
	Prior   Prior
	// Preferences are the limits found in Message; strategies may treat a
	// bare preference change as a request to replan.
	Preferences routeplan.Preferences
	HasPrefs    bool
}

// Strategy recognises one way of phrasing a route and returns the ordered
// chain of locations it names.
type Strategy interface {
	Name() string
	Match(ctx context.Context, in Input) ([]string, bool)
}

// IntentParser asks a language model for the origin and destinations of a
// free-text request.
type IntentParser interface {
	ParseRouteIntent(ctx context.Context, message string) (origin string, destinations []string, err error)
}

// Extraction is the structured result of one chat message.
type Extraction struct {
	Requests     []routeplan.SegmentRequest `json:"requests"`
	Origin       string                     `json:"origin"`
	Destinations []string                   `json:"destinations"`
	Preferences  routeplan.Preferences      `json:"preferences"`
	HasPrefs     bool                       `json:"has_preferences"`
	Strategy     string                     `json:"strategy"`
}

// Chain returns the origin followed by the destinations.
func (e *Extraction) Chain() []string {
	return append([]string{e.Origin}, e.Destinations...)
}

// ChainOf is the inverse of Pairs: it returns the location chain of reqs,
// or false when consecutive requests do not share an endpoint.
func ChainOf(reqs []routeplan.SegmentRequest) ([]string, bool) {
	if len(reqs) == 0 {
		return nil, false
	}
	chain := []string{reqs[0].Origin}
	for i, r := range reqs {
		if i > 0 && !strings.EqualFold(r.Origin, reqs[i-1].Destination) {
			return nil, false
		}
		chain = append(chain, r.Destination)
	}
	return chain, true
}

// Pairs turns a location chain into consecutive segment requests.
func Pairs(chain []string) []routeplan.SegmentRequest {
	if len(chain) < 2 {
		return nil
	}
	reqs := make([]routeplan.SegmentRequest, 0, len(chain)-1)
	for i := 0; i+1 < len(chain); i++ {
		reqs = append(reqs, routeplan.SegmentRequest{Origin: chain[i], Destination: chain[i+1]})
	}
	return reqs
}
