// README: Logging middleware: one structured line per request.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Logging(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if tripID := c.Param("id"); tripID != "" {
			fields = append(fields, zap.String("trip_id", tripID))
		}
		if sub := c.GetString(SubjectKey); sub != "" {
			fields = append(fields, zap.String("subject", sub))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("http: request", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("http: request", fields...)
		default:
			logger.Info("http: request", fields...)
		}
	}
}
