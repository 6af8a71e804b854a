package handlers

import (
	"net/http"
	"time"

	"github.com/concave-dev/lumen/internal/resources"
	"github.com/gin-gonic/gin"
)

// Represents the health check response
type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Instance  string                   `json:"instance,omitempty"`
	Uptime    string                   `json:"uptime"`
	Resources *resources.HostResources `json:"resources,omitempty"`
}

// HandleHealth returns the health status of the API server. A nil sampler
// omits the host resource snapshot.
func HandleHealth(version, instance string, startTime time.Time, sampler *resources.Sampler) gin.HandlerFunc {
	return func(c *gin.Context) {
		uptime := time.Since(startTime)

		response := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   version,
			Instance:  instance,
			Uptime:    resources.FormatDuration(uptime),
		}

		if sampler != nil {
			snapshot := sampler.Snapshot()
			response.Resources = &snapshot
		}

		c.JSON(http.StatusOK, response)
	}
}
