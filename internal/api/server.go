// Package api provides the HTTP API server of the Lumen daemon. It exposes
// image generation through the batching pipeline, background removal,
// health and stats endpoints for lumenctl, and Prometheus metrics.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/concave-dev/lumen/internal/api/handlers"
	"github.com/concave-dev/lumen/internal/backend"
	"github.com/concave-dev/lumen/internal/batching"
	"github.com/concave-dev/lumen/internal/cache"
	"github.com/concave-dev/lumen/internal/logging"
	"github.com/concave-dev/lumen/internal/netutil"
	"github.com/concave-dev/lumen/internal/resources"
	"github.com/concave-dev/lumen/internal/version"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Represents the Lumen API server
type Server struct {
	batcher  *batching.Batcher
	remover  backend.Remover
	cache    *cache.ImageCache
	sampler  *resources.Sampler
	gatherer prometheus.Gatherer
	limiter  *clientLimiter

	instanceName   string
	settings       handlers.GenerationSettings
	maxUploadBytes int64

	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration

	httpServer *http.Server
	listener   net.Listener // Pre-bound listener, nil until Start binds one
	bindAddr   string
	bindPort   int
}

// NewServer creates a new Lumen API server instance
func NewServer(config *Config) *Server {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		batcher:      config.Batcher,
		remover:      config.Remover,
		cache:        config.Cache,
		sampler:      config.Sampler,
		gatherer:     config.Gatherer,
		instanceName: config.InstanceName,
		settings: handlers.GenerationSettings{
			InferenceSteps: config.InferenceSteps,
			Model:          config.Model,
		},
		maxUploadBytes: config.MaxUploadBytes,
		readTimeout:    config.ReadTimeout,
		writeTimeout:   config.WriteTimeout,
		idleTimeout:    config.IdleTimeout,
		bindAddr:       config.BindAddr,
		bindPort:       config.BindPort,
	}

	if config.RateLimit > 0 {
		s.limiter = newClientLimiter(config.RateLimit, config.RateBurst)
	}

	return s
}

// NewServerWithListener creates a server that serves on an already bound
// listener. The configured port is replaced by the listener's actual port.
func NewServerWithListener(config *Config, listener net.Listener) (*Server, error) {
	if listener == nil {
		return nil, fmt.Errorf("listener cannot be nil")
	}

	port, err := netutil.NewPortBinder().GetListenerPort(listener)
	if err != nil {
		return nil, fmt.Errorf("failed to read listener port: %w", err)
	}

	s := NewServer(config)
	s.listener = listener
	s.bindPort = port
	return s, nil
}

// setupRouter builds the gin engine with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()

	// Configure Gin logging only if not already configured by CLI tools
	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("INFO", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}

	router.Use(s.loggingMiddleware())
	router.Use(s.corsMiddleware())
	router.Use(gin.Recovery())

	s.setupRoutes(router)
	return router
}

// Start starts the Lumen API server
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.bindAddr, fmt.Sprintf("%d", s.bindPort))
	logging.Info("Starting HTTP API server on %s", addr)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.setupRouter(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}

	if s.listener == nil {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to bind to %s: %w", addr, err)
		}
		s.listener = listener
	}

	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			logging.Error("HTTP server failed: %v", err)
		}
	}()

	logging.Success("HTTP API server started successfully")
	return nil
}

// Shutdown gracefully shuts down the HTTP server. In-flight requests keep
// their connection until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down HTTP API server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		return s.listener.Close()
	}

	return nil
}

// Port returns the port the server listens on.
func (s *Server) Port() int {
	return s.bindPort
}

var (
	startTime = time.Now() // Track server start time for uptime calculation
)

// handleHealth delegates to handlers.HandleHealth
func (s *Server) handleHealth(c *gin.Context) {
	handler := s.getHandlerHealth()
	handler(c)
}

// getHandlerHealth is a health endpoint handler factory
func (s *Server) getHandlerHealth() gin.HandlerFunc {
	return handlers.HandleHealth(version.LumendVersion, s.instanceName, startTime, s.sampler)
}

// handleStats delegates to handlers.HandleStats
func (s *Server) handleStats(c *gin.Context) {
	handler := s.getHandlerStats()
	handler(c)
}

// getHandlerStats is a stats endpoint handler factory
func (s *Server) getHandlerStats() gin.HandlerFunc {
	var cacheStats handlers.CacheStats
	if s.cache != nil {
		cacheStats = s.cache
	}
	return handlers.HandleStats(s.batcher, cacheStats)
}

// handleGenerateImage delegates to handlers.HandleGenerateImage
func (s *Server) handleGenerateImage(c *gin.Context) {
	handler := s.getHandlerGenerateImage()
	handler(c)
}

// getHandlerGenerateImage is a generate-image endpoint handler factory
func (s *Server) getHandlerGenerateImage() gin.HandlerFunc {
	// A nil *ImageCache must not become a non-nil interface
	var imageCache handlers.ImageCache
	if s.cache != nil {
		imageCache = s.cache
	}
	return handlers.HandleGenerateImage(s.batcher, imageCache, s.settings)
}

// handleRemoveBackground delegates to handlers.HandleRemoveBackground
func (s *Server) handleRemoveBackground(c *gin.Context) {
	handler := s.getHandlerRemoveBackground()
	handler(c)
}

// getHandlerRemoveBackground is a remove-background endpoint handler factory
func (s *Server) getHandlerRemoveBackground() gin.HandlerFunc {
	return handlers.HandleRemoveBackground(s.remover, s.maxUploadBytes)
}

// handleMetrics serves the Prometheus exposition format
func (s *Server) handleMetrics(c *gin.Context) {
	handler := s.getHandlerMetrics()
	handler(c)
}

// getHandlerMetrics is a metrics endpoint handler factory
func (s *Server) getHandlerMetrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}
