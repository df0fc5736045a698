package routeplan

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// Calendar renders plan as an iCalendar document with one all-day event per
// segment, the first on start's date.
func Calendar(plan *RoutePlan, start time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//roadtrip//route plan//EN")
	if plan == nil {
		return cal.Serialize()
	}

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for i, seg := range plan.Segments {
		ev := cal.AddEvent(fmt.Sprintf("%s-day-%d@roadtrip", plan.ID, i+1))
		ev.SetDtStampTime(plan.CreatedAt)
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ev.SetSummary(fmt.Sprintf("Day %d: %s → %s", i+1, seg.Origin, seg.Destination))
		ev.SetLocation(seg.Origin)
		ev.SetDescription(dayDescription(seg))
		day = day.AddDate(0, 0, 1)
	}
	return cal.Serialize()
}

func dayDescription(seg Segment) string {
	lines := []string{fmt.Sprintf("Drive %s (%s)", seg.DistanceText, seg.DurationText)}
	if seg.Estimated {
		lines = append(lines, "Figures are estimated from the full route")
	}
	lines = append(lines, seg.Issues...)
	return strings.Join(lines, "\n")
}
