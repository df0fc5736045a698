// README: HTTP router registration (gin).
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roadtrip/internal/http/handlers"
	"roadtrip/internal/http/middleware"
)

type RouterDeps struct {
	Planner     handlers.ChatPlanner
	States      handlers.StateReader
	Tools       handlers.ToolExecutor
	JWTSecret   string
	TurnTimeout time.Duration
	Logger      *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Logging(logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.JWTSecret))

	chatHandler := handlers.NewChatHandler(deps.Planner, deps.TurnTimeout)
	api.POST("/trips/:id/chat", chatHandler.Chat)

	routeHandler := handlers.NewRouteHandler(deps.States)
	api.GET("/trips/:id/route", routeHandler.Get)
	api.GET("/trips/:id/calendar", routeHandler.Calendar)

	toolHandler := handlers.NewToolHandler(deps.Tools, deps.TurnTimeout)
	api.GET("/tools", toolHandler.List)
	api.POST("/trips/:id/tools/:name", toolHandler.Execute)

	return r
}
