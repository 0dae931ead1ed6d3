package common

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck returns a liveness handler that always reports healthy
func HealthCheck(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessCheck runs every dependency check and answers 503 when any fails
func ReadinessCheck(serviceName, version string, checks map[string]func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ready"
		results := make(map[string]string, len(checks))

		for name, check := range checks {
			if err := check(); err != nil {
				results[name] = "unhealthy: " + err.Error()
				status = "not_ready"
				continue
			}
			results[name] = "healthy"
		}

		statusCode := http.StatusOK
		if status != "ready" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, HealthResponse{
			Status:    status,
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC(),
			Checks:    results,
		})
	}
}
