package middleware

import (
	"log/slog"
	"time"

	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/garage-sale-marketplace/internal/platform/identity"
	"github.com/gin-gonic/gin"
)

// Logger writes one access line per request. The line carries the correlation id and,
// on authenticated routes, the uid that Auth verified further down the chain.
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		// Auth replaces c.Request, so the context is read after the handlers ran
		ctx := c.Request.Context()
		requestLogger := logger.FromContext(ctx, log)
		if id, err := identity.FromContext(ctx); err == nil {
			requestLogger = requestLogger.With("uid", id.UID)
		}

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}

		requestLogger.Log(ctx, level, "HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)
	}
}
