// README: Tool handlers: list tool definitions and execute one tool call for a trip.
package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roadtrip/internal/modules/tools"
)

type ToolExecutor interface {
	Execute(ctx context.Context, tripID string, op tools.Operation) (*tools.Result, error)
}

type ToolHandler struct {
	tools   ToolExecutor
	timeout time.Duration
}

func NewToolHandler(exec ToolExecutor, timeout time.Duration) *ToolHandler {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &ToolHandler{tools: exec, timeout: timeout}
}

// List handles GET /api/tools.
func (h *ToolHandler) List(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"tools": tools.Definitions()})
}

// Execute handles POST /api/trips/:id/tools/:name with the tool arguments
// as the JSON body.
func (h *ToolHandler) Execute(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable body")
		return
	}
	op, err := tools.Decode(c.Param("name"), raw)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.tools.Execute(ctx, c.Param("id"), op)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
