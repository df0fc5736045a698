package ai

// routeIntent is the JSON object the intent model is asked to return.
type routeIntent struct {
	// Origin is where the trip starts. Empty when the message names none.
	Origin string `json:"origin"`

	// Destinations are the places to drive to, in travel order.
	Destinations []string `json:"destinations"`
}

// narrationInput is the slice of a plan handed to the narration model.
type narrationInput struct {
	Success  bool            `json:"success"`
	Days     []narrationDay  `json:"days"`
	Totals   narrationTotals `json:"totals"`
	Warnings []string        `json:"warnings,omitempty"`
	Advice   []string        `json:"advice,omitempty"`
}

type narrationDay struct {
	Day      int      `json:"day"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Distance string   `json:"distance"`
	Duration string   `json:"duration"`
	Estimate bool     `json:"estimate,omitempty"`
	Issues   []string `json:"issues,omitempty"`
}

type narrationTotals struct {
	DistanceKm    float64 `json:"distance_km"`
	DurationHours float64 `json:"duration_hours"`
	Days          int     `json:"days"`
}
