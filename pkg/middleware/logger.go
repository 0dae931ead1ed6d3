package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/truthlens/truthlens-api/pkg/logger"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. Probe and scrape endpoints are
// logged at debug level.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
		}

		reqLogger := logger.WithContext(c.Request.Context())

		switch {
		case len(c.Errors) > 0:
			reqLogger.Error("Request completed with errors", append(fields, zap.String("errors", c.Errors.String()))...)
		case path == "/metrics" || strings.HasPrefix(path, "/health"):
			reqLogger.Debug("Request completed", fields...)
		default:
			reqLogger.Info("Request completed", fields...)
		}
	}
}
