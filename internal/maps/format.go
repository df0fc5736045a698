package maps

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// FormatDuration renders hours the way the Directions API does ("5 hours 3 mins").
func FormatDuration(hours float64) string {
	total := int(math.Round(hours * 60))
	h, m := total/60, total%60
	switch {
	case h == 0:
		return plural(m, "min")
	case m == 0:
		return plural(h, "hour")
	default:
		return plural(h, "hour") + " " + plural(m, "min")
	}
}

// FormatDistance renders kilometres the way the Directions API does ("412 km").
func FormatDistance(km float64) string {
	if km < 100 {
		return fmt.Sprintf("%.1f km", km)
	}
	return fmt.Sprintf("%.0f km", km)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// RouteID derives a stable identifier for a computed leg so that identical
// provider answers produce identical plans.
func RouteID(origin, destination string, meters float64, d time.Duration) string {
	name := fmt.Sprintf("%s|%s|%.0f|%d", origin, destination, meters, int64(d.Seconds()))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
