package api

import (
	"github.com/gin-gonic/gin"
)

// Configures all API routes
func (s *Server) setupRoutes(router *gin.Engine) {
	// API version prefix
	v1 := router.Group("/api/v1")

	v1.GET("/health", s.handleHealth)
	v1.GET("/stats", s.handleStats)
	s.setupImageRoutes(v1)

	// Unversioned paths kept for existing clients
	s.setupImageRoutes(router.Group("/"))

	if s.gatherer != nil {
		router.GET("/metrics", s.handleMetrics)
	}
}

// setupImageRoutes mounts the rate limited image endpoints under parent
func (s *Server) setupImageRoutes(parent *gin.RouterGroup) {
	images := parent.Group("")
	if s.limiter != nil {
		images.Use(s.rateLimitMiddleware())
	}

	images.POST("/generate-image", s.handleGenerateImage)
	images.POST("/remove-background", s.handleRemoveBackground)
}
