package routeplan

import (
	"fmt"
	"math"
	"strconv"

	"roadtrip/internal/maps"
)

// ratioEpsilon absorbs float noise when a leg is an exact multiple of a limit.
const ratioEpsilon = 1e-9

// Validation is the outcome of checking one leg against daily limits.
type Validation struct {
	Valid           bool
	Issues          []string
	SuggestedSplits []SplitPoint
	DaysNeeded      int
}

// Validate checks leg against the effective daily limits of prefs and, when
// the leg needs more than one day, proposes evenly spaced overnight stops.
// An invalid leg whose overage rounds to a single day gets no splits.
func Validate(leg maps.Leg, prefs Preferences) Validation {
	prefs = prefs.WithDefaults()
	v := Validation{Valid: true, Issues: []string{}, SuggestedSplits: []SplitPoint{}, DaysNeeded: 1}

	if leg.DurationHours > prefs.MaxDailyDriveHours {
		v.Valid = false
		v.Issues = append(v.Issues, fmt.Sprintf("Drive time (%sh) exceeds maximum daily drive time (%sh)",
			num(leg.DurationHours), num(prefs.MaxDailyDriveHours)))
	}
	if leg.DistanceKm > prefs.MaxDailyDistanceKm {
		v.Valid = false
		v.Issues = append(v.Issues, fmt.Sprintf("Distance (%skm) exceeds maximum daily distance (%skm)",
			num(leg.DistanceKm), num(prefs.MaxDailyDistanceKm)))
	}
	if v.Valid {
		return v
	}

	v.DaysNeeded = daysNeeded(leg.DurationHours, leg.DistanceKm, prefs)
	v.SuggestedSplits = proportionalSplits(leg.DistanceKm, leg.DurationHours, v.DaysNeeded)
	return v
}

func daysNeeded(hours, km float64, prefs Preferences) int {
	r := math.Max(hours/prefs.MaxDailyDriveHours, km/prefs.MaxDailyDistanceKm)
	if n := math.Round(r); math.Abs(r-n) < ratioEpsilon {
		r = n
	}
	return int(math.Ceil(r))
}

// proportionalSplits places days-1 stops at k/days of the leg.
func proportionalSplits(km, hours float64, days int) []SplitPoint {
	splits := []SplitPoint{}
	for k := 1; k < days; k++ {
		splits = append(splits, SplitPoint{
			Day:                  k,
			StopLocation:         fmt.Sprintf("Intermediate stop %d", k),
			DistanceFromOriginKm: km * float64(k) / float64(days),
			HoursFromOrigin:      hours * float64(k) / float64(days),
		})
	}
	return splits
}

// num formats a figure for issue text, rounded to two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
