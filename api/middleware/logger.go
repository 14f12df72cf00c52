package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/energy-intelligence/internal/logger"
)

// RequestLogger writes one access log line per request. Successful requests to
// quietPaths (probes, scrapes) are logged at debug level.
func RequestLogger(quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"status":     status,
			"method":     c.Request.Method,
			"path":       path,
			"latency_ms": float64(time.Since(start).Microseconds()) / 1000,
			"ip":         c.ClientIP(),
		}
		if traceID := GetTraceID(c); traceID != "" {
			fields["trace_id"] = traceID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("server error")
		case status >= 400:
			entry.Warn("client error")
		case quiet[path]:
			entry.Debug("request completed")
		default:
			entry.Info("request completed")
		}
	}
}
