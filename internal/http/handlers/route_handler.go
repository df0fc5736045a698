package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roadtrip/internal/modules/routeplan"
	"roadtrip/internal/modules/trip"
)

type StateReader interface {
	Get(ctx context.Context, tripID string) (trip.RouteState, error)
}

type RouteHandler struct {
	states StateReader
}

func NewRouteHandler(states StateReader) *RouteHandler {
	return &RouteHandler{states: states}
}

// Get handles GET /api/trips/:id/route and returns the current plan.
func (h *RouteHandler) Get(c *gin.Context) {
	plan, ok := h.currentPlan(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, plan)
}

// Calendar handles GET /api/trips/:id/calendar?start=YYYY-MM-DD and returns
// the current plan as iCalendar, one day per segment. Without start the
// trip begins the day after the plan was made.
func (h *RouteHandler) Calendar(c *gin.Context) {
	plan, ok := h.currentPlan(c)
	if !ok {
		return
	}
	start := plan.CreatedAt.AddDate(0, 0, 1)
	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "start must be a date like 2006-01-02")
			return
		}
		start = t
	}
	c.Header("Content-Disposition", `attachment; filename="`+plan.ID+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(routeplan.Calendar(plan, start)))
}

func (h *RouteHandler) currentPlan(c *gin.Context) (*routeplan.RoutePlan, bool) {
	tripID := c.Param("id")
	if !trip.ValidID(tripID) {
		writeServiceError(c, trip.ErrInvalidTripID)
		return nil, false
	}
	st, err := h.states.Get(c.Request.Context(), tripID)
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	if st.CurrentPlan == nil {
		writeError(c, http.StatusNotFound, "no route planned for this trip")
		return nil, false
	}
	return st.CurrentPlan, true
}
