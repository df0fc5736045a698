// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"roadtrip/internal/modules/routeplan"
	"roadtrip/internal/modules/tools"
	"roadtrip/internal/modules/trip"
	"roadtrip/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps package sentinels to status codes. Unknown errors
// are attached to the context for the logging middleware and hidden from
// the client.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrInvalidTripID),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, tools.ErrInvalidArgs),
		errors.Is(err, routeplan.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, trip.ErrNotFound), errors.Is(err, tools.ErrUnknownTool):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "request timed out")
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
