package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// BatchingStats exposes batching counters.
type BatchingStats interface {
	GetMetrics() map[string]int64
}

// CacheStats exposes image cache hit counters.
type CacheStats interface {
	Stats() (hits, misses int64)
}

// CacheStatsResponse is the cache section of the stats response.
type CacheStatsResponse struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Timestamp time.Time           `json:"timestamp"`
	Batching  map[string]int64    `json:"batching"`
	Cache     *CacheStatsResponse `json:"cache,omitempty"`
}

// HandleStats returns batching and cache counters. cacheStats may be nil.
func HandleStats(batching BatchingStats, cacheStats CacheStats) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := StatsResponse{
			Timestamp: time.Now(),
			Batching:  batching.GetMetrics(),
		}

		if cacheStats != nil {
			hits, misses := cacheStats.Stats()
			response.Cache = &CacheStatsResponse{Hits: hits, Misses: misses}
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   response,
		})
	}
}
