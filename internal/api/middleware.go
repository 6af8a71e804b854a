// Package api middleware for request logging, CORS and per-client rate
// limiting of the image endpoints.
package api

import (
	"net/http"
	"time"

	"github.com/concave-dev/lumen/internal/logging"
	"github.com/gin-gonic/gin"
)

// loggingMiddleware logs one line per request. Server errors log at ERROR,
// client errors at WARN, everything else at INFO.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		logFn := logging.Info
		switch {
		case param.StatusCode >= http.StatusInternalServerError:
			logFn = logging.Error
		case param.StatusCode >= http.StatusBadRequest:
			logFn = logging.Warn
		}

		logFn("API: %s - [%s] \"%s %s %s\" %d %dB %s \"%s\" %s",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
		return ""
	})
}

// corsMiddleware provides CORS headers
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		c.Header("Access-Control-Expose-Headers", "X-Cache")
		c.Header("Access-Control-Max-Age", "300")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// rateLimitMiddleware rejects clients that exceed their token bucket
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please slow down.",
			})
			return
		}

		c.Next()
	}
}
