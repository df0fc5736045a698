// README: Chat handler: one conversational turn of route planning per request.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roadtrip/internal/service"
)

type ChatPlanner interface {
	HandleMessage(ctx context.Context, tripID, message string) (*service.TurnResult, error)
}

type ChatHandler struct {
	planner ChatPlanner
	timeout time.Duration
}

// NewChatHandler bounds every turn by timeout; zero means 90 seconds.
func NewChatHandler(planner ChatPlanner, timeout time.Duration) *ChatHandler {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &ChatHandler{planner: planner, timeout: timeout}
}

type chatReq struct {
	Message string `json:"message"`
}

// Chat handles POST /api/trips/:id/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.planner.HandleMessage(ctx, c.Param("id"), req.Message)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
