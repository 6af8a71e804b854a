// Package api: HTTP server configuration. The daemon builds this from its
// flags and hands over the batcher, remover, cache and metrics gatherer.
package api

import (
	"fmt"
	"time"

	"github.com/concave-dev/lumen/internal/backend"
	"github.com/concave-dev/lumen/internal/batching"
	"github.com/concave-dev/lumen/internal/cache"
	"github.com/concave-dev/lumen/internal/config"
	"github.com/concave-dev/lumen/internal/resources"
	"github.com/concave-dev/lumen/internal/validate"
	"github.com/prometheus/client_golang/prometheus"
)

// Config holds everything the HTTP API server needs. Batcher and Remover are
// required; Cache, Sampler and Gatherer are optional.
//
// WriteTimeout bounds a whole request including the wait for a batch, so it
// must exceed the backend timeout plus expected queueing.
type Config struct {
	BindAddr string // HTTP server bind address (e.g., "0.0.0.0")
	BindPort int    // HTTP server bind port

	InstanceName string // Reported by /health

	Batcher  *batching.Batcher   // Generation pipeline
	Remover  backend.Remover     // Background removal, called per request
	Cache    *cache.ImageCache   // Redis image cache, nil when disabled
	Sampler  *resources.Sampler  // Host stats for /health
	Gatherer prometheus.Gatherer // Source for /metrics

	InferenceSteps int    // Part of the image cache key
	Model          string // Part of the image cache key

	RateLimit      float64 // Requests per second per client IP, 0 disables
	RateBurst      int
	MaxUploadBytes int64

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with the daemon's default network and
// timeout settings. Batcher and Remover must still be set.
func DefaultConfig() *Config {
	return &Config{
		BindAddr:       config.DefaultBindAddr,
		BindPort:       config.DefaultAPIPort,
		InferenceSteps: batching.DefaultConfig().InferenceSteps,
		Model:          config.DefaultModel,
		RateLimit:      0,
		RateBurst:      10,
		MaxUploadBytes: 20 << 20,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   5 * time.Minute,
		IdleTimeout:    60 * time.Second,
	}
}

// Validate checks that the server can start with this config.
func (c *Config) Validate() error {
	if err := validate.ValidateRequiredString(c.BindAddr, "bind address"); err != nil {
		return err
	}
	if err := validate.ValidatePortRange(c.BindPort); err != nil {
		return fmt.Errorf("bind port validation failed: %w", err)
	}
	if c.Batcher == nil {
		return fmt.Errorf("batcher cannot be nil")
	}
	if c.Remover == nil {
		return fmt.Errorf("remover cannot be nil")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative, got %v", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be positive when rate limiting is enabled, got %d", c.RateBurst)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadBytes)
	}
	for name, timeout := range map[string]time.Duration{
		"read timeout":  c.ReadTimeout,
		"write timeout": c.WriteTimeout,
		"idle timeout":  c.IdleTimeout,
	} {
		if err := validate.ValidatePositiveTimeout(timeout, name); err != nil {
			return err
		}
	}

	return nil
}
