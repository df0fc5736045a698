package routeplan

import (
	"fmt"
	"strings"
)

// FormatPlan renders a plan as a short markdown message. It is used when no
// narrator is configured or the narrator fails.
func FormatPlan(plan *RoutePlan) string {
	if plan == nil || !plan.Success || len(plan.Segments) == 0 {
		var b strings.Builder
		b.WriteString("Route calculation failed.")
		if plan != nil {
			writeList(&b, "Warnings", plan.Warnings)
		}
		return b.String()
	}

	var b strings.Builder
	b.WriteString("**Route calculated**\n\n")
	if len(plan.Segments) == 1 {
		seg := plan.Segments[0]
		fmt.Fprintf(&b, "**Route:** %s → %s\n", seg.Origin, seg.Destination)
		fmt.Fprintf(&b, "**Distance:** %s\n", seg.DistanceText)
		fmt.Fprintf(&b, "**Duration:** %s\n", seg.DurationText)
	} else {
		b.WriteString("**Day by day:**\n")
		for i, seg := range plan.Segments {
			fmt.Fprintf(&b, "%d. %s → %s (%s, %s)", i+1, seg.Origin, seg.Destination, seg.DistanceText, seg.DurationText)
			if !seg.Valid {
				b.WriteString(" [over daily limit]")
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\n**Total:** %.0f km, %.1f h over %d days\n",
			plan.Summary.TotalDistanceKm, round1(plan.Summary.TotalDurationHours), plan.Summary.TotalSegments)
	}

	writeList(&b, "Warnings", plan.Warnings)
	var recs []string
	for _, rec := range Recommend(plan) {
		recs = append(recs, rec.Message)
	}
	writeList(&b, "Recommendations", recs)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s:**\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}
