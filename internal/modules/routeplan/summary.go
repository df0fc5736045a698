package routeplan

import (
	"fmt"
	"math"
	"strings"
)

// longSegmentHours marks a single day's drive as long enough to suggest a
// rest day after it.
const longSegmentHours = 6

// Summarize computes totals and averages over the final segments. Totals are
// exact sums; rounding is left to presentation.
func Summarize(segments []Segment) Summary {
	var s Summary
	s.TotalSegments = len(segments)
	for _, seg := range segments {
		s.TotalDistanceKm += seg.DistanceKm
		s.TotalDurationHours += seg.DurationHours
		if seg.Valid {
			s.ValidSegments++
		} else {
			s.InvalidSegments++
		}
		if seg.ResolvedFrom != nil {
			s.ResolvedSegments++
		}
	}
	if s.TotalSegments > 0 {
		s.AverageDistancePerSegment = s.TotalDistanceKm / float64(s.TotalSegments)
		s.AverageDurationPerSegment = s.TotalDurationHours / float64(s.TotalSegments)
	}
	return s
}

// Recommend derives advice from a finished plan: segments still over the
// limits, a trip with more than a week of full driving days, and long days.
func Recommend(plan *RoutePlan) []Recommendation {
	recs := []Recommendation{}
	if plan == nil || !plan.Success {
		return recs
	}

	var invalid, long []string
	for _, seg := range plan.Segments {
		if !seg.Valid {
			invalid = append(invalid, fmt.Sprintf("%s to %s", seg.Origin, seg.Destination))
		}
		if seg.DurationHours > longSegmentHours {
			long = append(long, fmt.Sprintf("%s to %s (%s)", seg.Origin, seg.Destination, seg.DurationText))
		}
	}

	if len(invalid) > 0 {
		recs = append(recs, Recommendation{
			Type:     "invalid_segments",
			Message:  "Some segments still exceed your driving preferences. Consider adjusting your route or extending your trip duration.",
			Segments: invalid,
		})
	}

	weekly := plan.Preferences.WithDefaults().MaxDailyDriveHours * 7
	if plan.Summary.TotalDurationHours > weekly {
		recs = append(recs, Recommendation{
			Type: "trip_too_intensive",
			Message: fmt.Sprintf("This trip involves %.1f hours of driving. Consider extending your trip duration or reducing destinations.",
				plan.Summary.TotalDurationHours),
			Suggestion: "Consider adding more rest days or reducing the number of destinations.",
		})
	}

	if len(long) > 0 {
		recs = append(recs, Recommendation{
			Type:     "long_segments",
			Message:  "Some segments are quite long. Consider adding rest days between these segments.",
			Segments: long,
		})
	}
	return recs
}

// SegmentIssues lists one recommendation per segment that exceeds the
// limits, with the validator's issues as its message.
func SegmentIssues(plan *RoutePlan) []Recommendation {
	recs := []Recommendation{}
	if plan == nil {
		return recs
	}
	for _, seg := range plan.Segments {
		if seg.Valid {
			continue
		}
		msg := strings.Join(seg.Issues, "; ")
		if msg == "" {
			msg = fmt.Sprintf("%s to %s exceeds the daily limits", seg.Origin, seg.Destination)
		}
		recs = append(recs, Recommendation{
			Type:     "segment_too_long",
			Message:  msg,
			Segments: []string{fmt.Sprintf("%s to %s", seg.Origin, seg.Destination)},
		})
	}
	return recs
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
