package routeplan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadtrip/internal/geo"
	"roadtrip/internal/maps"
)

func requireChained(t *testing.T, plan *RoutePlan) {
	t.Helper()
	for i := 0; i+1 < len(plan.Segments); i++ {
		require.Equal(t, plan.Segments[i].Destination, plan.Segments[i+1].Origin, "segment %d", i)
	}
}

func requireWithinLimits(t *testing.T, plan *RoutePlan) {
	t.Helper()
	for _, seg := range plan.Segments {
		if !seg.Valid {
			continue
		}
		require.LessOrEqual(t, seg.DurationHours, plan.Preferences.MaxDailyDriveHours)
		require.LessOrEqual(t, seg.DistanceKm, plan.Preferences.MaxDailyDistanceKm)
	}
}

func requireExactTotals(t *testing.T, plan *RoutePlan) {
	t.Helper()
	var km, hours float64
	for _, seg := range plan.Segments {
		km += seg.DistanceKm
		hours += seg.DurationHours
	}
	require.Equal(t, km, plan.Summary.TotalDistanceKm)
	require.Equal(t, hours, plan.Summary.TotalDurationHours)
}

func TestOptimize_ShortSegmentIsKept(t *testing.T) {
	d := newStubDirections().add("Lyon", "Marseille", 3.5, 350)
	svc := newTestService(d)

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{{Origin: "Lyon", Destination: "Marseille"}}, Preferences{})
	require.NoError(t, err)

	require.True(t, plan.Success)
	require.Len(t, plan.Segments, 1)
	seg := plan.Segments[0]
	assert.True(t, seg.Valid)
	assert.Empty(t, seg.Issues)
	assert.Empty(t, seg.SuggestedSplits)
	assert.Equal(t, 350.0, seg.DistanceKm)
	assert.Equal(t, Summary{
		TotalSegments:             1,
		TotalDistanceKm:           350,
		TotalDurationHours:        3.5,
		ValidSegments:             1,
		AverageDistancePerSegment: 350,
		AverageDurationPerSegment: 3.5,
	}, plan.Summary)
	assert.Equal(t, "plan-1", plan.ID)
	assert.Equal(t, fixedTime, plan.CreatedAt)
	assert.Equal(t, []string{"Lyon|Marseille"}, d.calls)
}

func TestOptimize_SplitsCrossCountryDrive(t *testing.T) {
	d := newStubDirections().add("New York", "Los Angeles", 40, 4000)
	svc := newTestService(d)

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{{Origin: "New York", Destination: "Los Angeles"}}, Preferences{})
	require.NoError(t, err)

	require.True(t, plan.Success)
	require.GreaterOrEqual(t, len(plan.Segments), 5)
	requireChained(t, plan)
	requireWithinLimits(t, plan)
	requireExactTotals(t, plan)

	assert.Equal(t, "New York", plan.Segments[0].Origin)
	assert.Equal(t, "Los Angeles", plan.Segments[len(plan.Segments)-1].Destination)
	assert.InDelta(t, 4000, plan.Summary.TotalDistanceKm, 1e-6)
	assert.Equal(t, plan.Summary.TotalSegments, plan.Summary.ValidSegments)
	for _, seg := range plan.Segments {
		assert.True(t, seg.Valid)
		assert.True(t, seg.Estimated, "placeholder stops cannot be routed")
		assert.Less(t, seg.DistanceKm, 4000.0)
		assert.Less(t, seg.DurationHours, 40.0)
	}
	assert.Equal(t, "Intermediate stop 1 (along route)", plan.Segments[0].Destination)
	assert.NotEmpty(t, plan.Warnings)
}

func TestOptimize_NamesSplitPointsAfterTowns(t *testing.T) {
	d := newStubDirections().add("New York", "Los Angeles", 40, 4000)
	d.fallback = func(origin, destination string) (maps.Leg, error) {
		return testLeg(origin, destination, 7.5, 780), nil
	}
	g := &stubGeocoder{
		places: map[string]maps.GeocodeResult{
			"new york":    place("New York, NY, USA", 40.7128, -74.0060, "locality", "political"),
			"los angeles": place("Los Angeles, CA, USA", 34.0522, -118.2437, "locality", "political"),
		},
		reverse: func(p geo.Point, _ []string) []maps.GeocodeResult {
			return []maps.GeocodeResult{place(fmt.Sprintf("Town %.0f", p.Lng), p.Lat, p.Lng, "locality")}
		},
	}
	svc := newTestService(d, WithResolver(NewResolver(g, 0, nil)))

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{{Origin: "New York", Destination: "Los Angeles"}}, Preferences{})
	require.NoError(t, err)

	require.Len(t, plan.Segments, 5)
	requireChained(t, plan)
	requireWithinLimits(t, plan)
	requireExactTotals(t, plan)
	for _, seg := range plan.Segments {
		assert.False(t, seg.Estimated)
		assert.True(t, seg.Valid)
	}
	for _, seg := range plan.Segments[:4] {
		assert.True(t, strings.HasPrefix(seg.Destination, "Town "), seg.Destination)
	}
}

func TestOptimize_ResolvesUnrecognisedDestination(t *testing.T) {
	d := newStubDirections().add("El Calafate", "El Chaltén", 2.7, 214)
	d.errs["El Calafate|Mount Fitz Roy"] = fmt.Errorf("directions: %w", maps.ErrNoResults)
	g := &stubGeocoder{
		places: map[string]maps.GeocodeResult{
			"el calafate":    place("El Calafate", -50.3379, -72.2648, "locality", "political"),
			"mount fitz roy": place("Monte Fitz Roy", -49.2714, -73.0431, "natural_feature"),
		},
		reverse: func(p geo.Point, _ []string) []maps.GeocodeResult {
			return []maps.GeocodeResult{
				place("Santa Cruz Province", -48.8, -69.8, "administrative_area_level_1"),
				place("El Chaltén", -49.3314, -72.8861, "locality", "political"),
			}
		},
	}
	svc := newTestService(d, WithResolver(NewResolver(g, 0, nil)))

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{{Origin: "El Calafate", Destination: "Mount Fitz Roy"}}, Preferences{})
	require.NoError(t, err)

	require.True(t, plan.Success)
	require.Len(t, plan.Segments, 1)
	seg := plan.Segments[0]
	assert.Equal(t, "El Calafate", seg.Origin)
	assert.Equal(t, "El Chaltén", seg.Destination)
	require.NotNil(t, seg.ResolvedFrom)
	assert.Equal(t, "El Calafate", seg.ResolvedFrom.OriginalOrigin)
	assert.Equal(t, "Mount Fitz Roy", seg.ResolvedFrom.OriginalDestination)
	assert.Nil(t, seg.ResolvedFrom.Origin)
	require.NotNil(t, seg.ResolvedFrom.Destination)
	assert.Equal(t, ConfidenceHigh, seg.ResolvedFrom.Destination.Confidence)
	assert.InDelta(t, 13.3, seg.ResolvedFrom.Destination.DistanceKm, 2)
	assert.Equal(t, 1, plan.Summary.ResolvedSegments)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "Destination 'Mount Fitz Roy' resolved to 'El Chaltén'")
}

func TestOptimize_CarriesResolvedNameIntoNextSegment(t *testing.T) {
	d := newStubDirections().
		add("El Calafate", "El Chaltén", 2.7, 214).
		add("El Chaltén", "Perito Moreno", 6, 560)
	g := &stubGeocoder{
		places: map[string]maps.GeocodeResult{
			"el calafate":    place("El Calafate", -50.3379, -72.2648, "locality"),
			"mount fitz roy": place("Monte Fitz Roy", -49.2714, -73.0431, "natural_feature"),
		},
		reverse: func(geo.Point, []string) []maps.GeocodeResult {
			return []maps.GeocodeResult{place("El Chaltén", -49.3314, -72.8861, "locality")}
		},
	}
	svc := newTestService(d, WithResolver(NewResolver(g, 0, nil)))

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{
		{Origin: "El Calafate", Destination: "Mount Fitz Roy"},
		{Origin: "Mount Fitz Roy", Destination: "Perito Moreno"},
	}, Preferences{})
	require.NoError(t, err)

	require.Len(t, plan.Segments, 2)
	requireChained(t, plan)
	assert.Equal(t, "Perito Moreno", plan.Segments[1].Destination)
}

func TestOptimize_KeepsRoutedOriginWhenResolving(t *testing.T) {
	d := newStubDirections().
		add("Fresno", "Yosemite Valley", 1.8, 150).
		add("Yosemite Valley", "El Portal", 0.4, 25)
	valley := place("Yosemite Valley", 37.7456, -119.5936, "natural_feature")
	g := &stubGeocoder{
		places: map[string]maps.GeocodeResult{
			"fresno":              place("Fresno, CA, USA", 36.7378, -119.7871, "locality"),
			"yosemite valley":     valley,
			"half dome trailhead": place("Half Dome Trailhead", 37.7322, -119.5580, "point_of_interest"),
		},
		reverse: func(p geo.Point, _ []string) []maps.GeocodeResult {
			if p == valley.Point {
				return []maps.GeocodeResult{place("Mariposa", 37.4849, -119.9663, "locality")}
			}
			return []maps.GeocodeResult{place("El Portal", 37.6749, -119.7832, "locality")}
		},
	}
	svc := newTestService(d, WithResolver(NewResolver(g, 0, nil)))

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{
		{Origin: "Fresno", Destination: "Yosemite Valley"},
		{Origin: "Yosemite Valley", Destination: "Half Dome Trailhead"},
	}, Preferences{})
	require.NoError(t, err)

	require.Len(t, plan.Segments, 2)
	requireChained(t, plan)
	seg := plan.Segments[1]
	assert.Equal(t, "Yosemite Valley", seg.Origin)
	assert.Equal(t, "El Portal", seg.Destination)
	require.NotNil(t, seg.ResolvedFrom)
	assert.Nil(t, seg.ResolvedFrom.Origin)
	require.NotNil(t, seg.ResolvedFrom.Destination)
	assert.NotContains(t, d.calls, "Mariposa|El Portal")
}

func TestOptimize_PartialFailureKeepsOtherSegments(t *testing.T) {
	d := newStubDirections().
		add("Paris", "Lyon", 4.5, 465).
		add("Nice", "Genoa", 2.5, 195)
	svc := newTestService(d)

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{
		{Origin: "Paris", Destination: "Lyon"},
		{Origin: "Lyon", Destination: "Atlantis"},
		{Origin: "Nice", Destination: "Genoa"},
	}, Preferences{})
	require.NoError(t, err)

	require.True(t, plan.Success)
	require.Len(t, plan.Segments, 2)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "Lyon to Atlantis")
	assert.Len(t, plan.Errors, 1)
}

func TestOptimize_AllSegmentsFail(t *testing.T) {
	svc := newTestService(newStubDirections())

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{
		{Origin: "Atlantis", Destination: "Lemuria"},
		{Origin: "Lemuria", Destination: "Mu"},
	}, Preferences{})
	require.NoError(t, err)

	assert.False(t, plan.Success)
	assert.Empty(t, plan.Segments)
	assert.NotNil(t, plan.Segments)
	assert.Len(t, plan.Warnings, 2)
	assert.Contains(t, plan.Errors, ErrNoSegments.Error())
	assert.Equal(t, Summary{}, plan.Summary)
}

func TestOptimize_RequestDeniedStopsRun(t *testing.T) {
	d := newStubDirections().add("Lemuria", "Mu", 1, 10)
	d.errs["Paris|Lyon"] = fmt.Errorf("directions: %w", maps.ErrRequestDenied)
	svc := newTestService(d)

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{
		{Origin: "Paris", Destination: "Lyon"},
		{Origin: "Lemuria", Destination: "Mu"},
	}, Preferences{})
	require.NoError(t, err)

	assert.False(t, plan.Success)
	assert.Empty(t, plan.Segments)
	assert.Len(t, plan.Errors, 1)
	assert.Equal(t, []string{"Paris|Lyon"}, d.calls)
}

func TestOptimize_DiscoversTownsForMarginalOverage(t *testing.T) {
	d := newStubDirections().
		add("Denver", "Las Vegas", 8+1e-10, 750).
		add("Denver", "Green River, UT, USA", 4.5, 480).
		add("Green River, UT, USA", "Las Vegas", 3.5, 270)
	g := &stubGeocoder{places: map[string]maps.GeocodeResult{
		"denver":    place("Denver, CO, USA", 39.7392, -104.9903, "locality"),
		"las vegas": place("Las Vegas, NV, USA", 36.1699, -115.1398, "locality"),
	}}
	stops := &stubStops{towns: []maps.Place{
		{Name: "Green River", Address: "Green River, UT, USA", Point: geo.Point{Lat: 38.9950, Lng: -110.1596}},
		{Name: "Anchorage", Address: "Anchorage, AK, USA", Point: geo.Point{Lat: 61.2181, Lng: -149.9003}},
	}}
	svc := newTestService(d, WithResolver(NewResolver(g, 0, nil)), WithStopFinder(stops))

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{{Origin: "Denver", Destination: "Las Vegas"}}, Preferences{})
	require.NoError(t, err)

	require.Len(t, plan.Segments, 2)
	requireChained(t, plan)
	assert.Equal(t, "Green River, UT, USA", plan.Segments[0].Destination)
	for _, seg := range plan.Segments {
		assert.True(t, seg.Valid)
		assert.False(t, seg.Estimated)
	}
	assert.Equal(t, 1, stops.calls)
}

func TestOptimize_FallsBackToGenericStops(t *testing.T) {
	d := newStubDirections().add("Denver", "Las Vegas", 8+1e-10, 750)
	svc := newTestService(d)

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{{Origin: "Denver", Destination: "Las Vegas"}}, Preferences{})
	require.NoError(t, err)

	require.Len(t, plan.Segments, 2)
	requireChained(t, plan)
	requireExactTotals(t, plan)
	for _, seg := range plan.Segments {
		assert.True(t, seg.Valid)
		assert.True(t, seg.Estimated)
	}
}

func TestOptimize_ResolvesUnroutableSplitStop(t *testing.T) {
	d := newStubDirections().
		add("Denver", "Las Vegas", 10, 1000).
		add("Denver", "Green River, UT, USA", 5, 540).
		add("Green River, UT, USA", "Las Vegas", 4.5, 420)
	g := &stubGeocoder{
		places: map[string]maps.GeocodeResult{
			"denver":         place("Denver, CO, USA", 39.7392, -104.9903, "locality"),
			"las vegas":      place("Las Vegas, NV, USA", 36.1699, -115.1398, "locality"),
			"cisco, ut, usa": place("Cisco, UT, USA", 38.9697, -109.3210, "point_of_interest"),
		},
		reverse: func(_ geo.Point, types []string) []maps.GeocodeResult {
			// Split points are named from localities only; resolution asks
			// for towns and areas.
			if len(types) == 1 {
				return []maps.GeocodeResult{place("Cisco, UT, USA", 38.9697, -109.3210, "locality")}
			}
			return []maps.GeocodeResult{place("Green River, UT, USA", 38.9950, -110.1596, "locality")}
		},
	}
	svc := newTestService(d, WithResolver(NewResolver(g, 0, nil)))

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{{Origin: "Denver", Destination: "Las Vegas"}}, Preferences{})
	require.NoError(t, err)

	require.Len(t, plan.Segments, 2)
	requireChained(t, plan)
	requireWithinLimits(t, plan)
	first := plan.Segments[0]
	assert.Equal(t, "Green River, UT, USA", first.Destination)
	assert.False(t, first.Estimated)
	require.NotNil(t, first.ResolvedFrom)
	assert.Equal(t, "Cisco, UT, USA", first.ResolvedFrom.OriginalDestination)
	assert.Equal(t, "Las Vegas", plan.Segments[1].Destination)
	assert.Contains(t, d.calls, "Denver|Cisco, UT, USA")
	assert.Contains(t, strings.Join(plan.Warnings, "\n"), "resolved to 'Green River, UT, USA'")
}

func TestOptimize_DistanceOnlyLegIsNotSplit(t *testing.T) {
	d := newStubDirections().add("Denver", "Las Vegas", 0, 2000)
	svc := newTestService(d)

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{{Origin: "Denver", Destination: "Las Vegas"}}, Preferences{})
	require.NoError(t, err)

	require.Len(t, plan.Segments, 1)
	assert.False(t, plan.Segments[0].Valid)
	assert.False(t, plan.Segments[0].Estimated)
	assert.Contains(t, strings.Join(plan.Warnings, "\n"), ErrDecompositionExhausted.Error())
	assert.Equal(t, []string{"Denver|Las Vegas"}, d.calls)
}

func TestOptimize_DecompositionExhausted(t *testing.T) {
	d := newStubDirections().add("New York", "Los Angeles", 40, 4000)
	d.fallback = func(origin, destination string) (maps.Leg, error) {
		return testLeg(origin, destination, 39, 3900), nil
	}
	cfg := DefaultConfig()
	cfg.CallDelay = 0
	cfg.MaxSplitDepth = 1
	svc := NewService(d, cfg)

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{{Origin: "New York", Destination: "Los Angeles"}}, Preferences{})
	require.NoError(t, err)

	require.True(t, plan.Success)
	require.Len(t, plan.Segments, 5)
	requireChained(t, plan)
	assert.Equal(t, 5, plan.Summary.InvalidSegments)
	for _, seg := range plan.Segments {
		assert.NotEmpty(t, seg.Issues)
		assert.Less(t, seg.DistanceKm, 4000.0)
	}
	var exhausted int
	for _, w := range plan.Warnings {
		if strings.Contains(w, ErrDecompositionExhausted.Error()) {
			exhausted++
		}
	}
	assert.Equal(t, 5, exhausted)
}

func TestOptimize_RejectsLegsThatDoNotShrink(t *testing.T) {
	d := newStubDirections().add("New York", "Los Angeles", 40, 4000)
	d.fallback = func(origin, destination string) (maps.Leg, error) {
		return testLeg(origin, destination, 41, 4100), nil
	}
	svc := newTestService(d)

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{{Origin: "New York", Destination: "Los Angeles"}}, Preferences{})
	require.NoError(t, err)

	require.Len(t, plan.Segments, 5)
	for _, seg := range plan.Segments {
		assert.True(t, seg.Estimated)
		assert.Less(t, seg.DurationHours, 40.0)
	}
}

func TestOptimize_IsIdempotent(t *testing.T) {
	run := func() *RoutePlan {
		d := newStubDirections().
			add("New York", "Chicago", 12.5, 1270).
			add("Chicago", "Denver", 14.5, 1610)
		plan, err := newTestService(d).Optimize(context.Background(), []SegmentRequest{
			{Origin: "New York", Destination: "Chicago"},
			{Origin: "Chicago", Destination: "Denver"},
		}, Preferences{MaxDailyDriveHours: 7})
		require.NoError(t, err)
		return plan
	}
	first, second := run(), run()
	require.Equal(t, first, second)
	requireChained(t, first)
	requireWithinLimits(t, first)
}

func TestOptimize_CallTimeoutFailsOnlyThatSegment(t *testing.T) {
	d := newStubDirections().
		add("Paris", "Lyon", 4.5, 465).
		add("Nice", "Genoa", 2.5, 195)
	d.hang["Lyon|Nice"] = true
	cfg := DefaultConfig()
	cfg.CallDelay = 0
	cfg.CallTimeout = 10 * time.Millisecond
	svc := NewService(d, cfg)

	plan, err := svc.Optimize(context.Background(), []SegmentRequest{
		{Origin: "Paris", Destination: "Lyon"},
		{Origin: "Lyon", Destination: "Nice"},
		{Origin: "Nice", Destination: "Genoa"},
	}, Preferences{})
	require.NoError(t, err)

	require.True(t, plan.Success)
	require.Len(t, plan.Segments, 2)
	assert.Equal(t, "Nice", plan.Segments[1].Origin)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "Lyon to Nice")
	assert.Contains(t, plan.Warnings[0], context.DeadlineExceeded.Error())
}

func TestOptimize_SpacesDirectionsCalls(t *testing.T) {
	d := newStubDirections().
		add("A", "B", 1, 100).
		add("B", "C", 1, 100).
		add("C", "D", 1, 100).
		add("D", "E", 1, 100)
	cfg := DefaultConfig()
	cfg.CallDelay = 20 * time.Millisecond
	svc := NewService(d, cfg)

	start := time.Now()
	plan, err := svc.Optimize(context.Background(), []SegmentRequest{
		{Origin: "A", Destination: "B"},
		{Origin: "B", Destination: "C"},
		{Origin: "C", Destination: "D"},
		{Origin: "D", Destination: "E"},
	}, Preferences{})
	elapsed := time.Since(start)
	require.NoError(t, err)

	require.Len(t, plan.Segments, 4)
	require.Len(t, d.calls, 4)
	assert.GreaterOrEqual(t, elapsed, 3*cfg.CallDelay)
}

func TestCalculate_DoesNotDecompose(t *testing.T) {
	d := newStubDirections().add("New York", "Los Angeles", 40, 4000)
	svc := newTestService(d)

	plan, err := svc.Calculate(context.Background(), []SegmentRequest{{Origin: "New York", Destination: "Los Angeles"}}, Preferences{})
	require.NoError(t, err)

	require.Len(t, plan.Segments, 1)
	assert.False(t, plan.Segments[0].Valid)
	assert.Len(t, plan.Segments[0].SuggestedSplits, 4)
	assert.Equal(t, 1, plan.Summary.InvalidSegments)
	assert.Len(t, d.calls, 1)
}

func TestOptimize_RejectsMalformedInput(t *testing.T) {
	svc := newTestService(newStubDirections())

	_, err := svc.Optimize(context.Background(), nil, Preferences{})
	assert.True(t, errors.Is(err, ErrBadRequest))

	_, err = svc.Optimize(context.Background(), []SegmentRequest{{Origin: "Paris", Destination: " "}}, Preferences{})
	assert.True(t, errors.Is(err, ErrBadRequest))
}
