// README: Tool operations: the closed set of route tools a chat model may call, with typed arguments.
package tools

import (
	"errors"

	"roadtrip/internal/modules/routeplan"
)

var (
	ErrUnknownTool = errors.New("unknown tool")
	ErrInvalidArgs = errors.New("invalid tool arguments")
)

type Kind string

const (
	KindPlanRoute      Kind = "plan_route"
	KindOptimizeRoute  Kind = "optimize_route"
	KindCalculateRoute Kind = "calculate_route"
)

// Kinds lists every tool in definition order.
var Kinds = []Kind{KindPlanRoute, KindOptimizeRoute, KindCalculateRoute}

// Operation is one decoded tool call. The set of implementations is closed:
// PlanRoute, OptimizeRoute and CalculateRoute.
type Operation interface {
	Kind() Kind
}

// PreferenceArgs are optional driving limits passed with a tool call.
type PreferenceArgs struct {
	MaxDailyDriveHours float64  `json:"max_daily_drive_hours" validate:"gte=0,lte=24"`
	// MaxDailyDriveH is an older spelling of MaxDailyDriveHours.
	MaxDailyDriveH     float64  `json:"max_daily_drive_h,omitempty" validate:"gte=0,lte=24"`
	MaxDailyDistanceKm float64  `json:"max_daily_distance_km" validate:"gte=0"`
	Avoid              []string `json:"avoid" validate:"dive,oneof=tolls highways ferries unpaved"`
	DaytimeOnly        bool     `json:"daytime_only"`
}

func (a *PreferenceArgs) preferences() routeplan.Preferences {
	if a == nil {
		return routeplan.Preferences{}
	}
	hours := a.MaxDailyDriveHours
	if hours == 0 {
		hours = a.MaxDailyDriveH
	}
	return routeplan.Preferences{
		MaxDailyDriveHours: hours,
		MaxDailyDistanceKm: a.MaxDailyDistanceKm,
		Avoid:              a.Avoid,
		DaytimeOnly:        a.DaytimeOnly,
	}
}

// DateConstraint is a fixed date or reservation the trip must respect.
type DateConstraint struct {
	Location    string `json:"location" validate:"required"`
	StartDate   string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Description string `json:"description,omitempty"`
}

type PlanRoute struct {
	Origin          string           `json:"origin" validate:"required"`
	Destinations    []string         `json:"destinations" validate:"required,min=1,dive,required"`
	TransportMode   string           `json:"transport_mode" validate:"omitempty,oneof=driving walking bicycling transit"`
	Constraints     *PreferenceArgs  `json:"constraints"`
	DateConstraints []DateConstraint `json:"date_constraints" validate:"dive"`
}

type OptimizeRoute struct {
	Segments        []routeplan.SegmentRequest `json:"segments" validate:"required,min=1,dive"`
	UserPreferences *PreferenceArgs            `json:"user_preferences"`
}

type CalculateRoute struct {
	Segments        []routeplan.SegmentRequest `json:"segments" validate:"required,min=1,dive"`
	UserPreferences *PreferenceArgs            `json:"user_preferences"`
}

func (PlanRoute) Kind() Kind      { return KindPlanRoute }
func (OptimizeRoute) Kind() Kind  { return KindOptimizeRoute }
func (CalculateRoute) Kind() Kind { return KindCalculateRoute }

// Result is what a tool call returns to the caller.
type Result struct {
	Tool            Kind                       `json:"tool"`
	Success         bool                       `json:"success"`
	Plan            *routeplan.RoutePlan       `json:"route,omitempty"`
	Recommendations []routeplan.Recommendation `json:"recommendations"`
	DateConstraints []DateConstraint           `json:"date_constraints,omitempty"`
	Notes           []string                   `json:"notes,omitempty"`
	Error           string                     `json:"error,omitempty"`
}
