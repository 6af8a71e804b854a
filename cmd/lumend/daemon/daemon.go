// Package daemon runs the Lumen daemon: it builds the batching pipeline and
// its collaborators from config.Global, serves the HTTP API and tears
// everything down on SIGINT or SIGTERM.
//
// STARTUP ORDER:
//  1. Backend (generator and remover), batcher, optional Redis cache
//  2. Pre-bind the API listener, falling back to a free port when --api was
//     not given explicitly
//  3. Start the dispatcher, then the API server
//
// SHUTDOWN ORDER:
// The API server stops accepting connections first (5s grace), then the
// batcher closes its gateway, lets the in-flight batch finish and fails
// anything still queued. The cache is closed last, when Run returns, on every
// path after it was opened.
package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/concave-dev/lumen/cmd/lumend/config"
	"github.com/concave-dev/lumen/internal/api"
	"github.com/concave-dev/lumen/internal/backend"
	"github.com/concave-dev/lumen/internal/batching"
	"github.com/concave-dev/lumen/internal/cache"
	"github.com/concave-dev/lumen/internal/logging"
	"github.com/concave-dev/lumen/internal/netutil"
	"github.com/concave-dev/lumen/internal/resources"
	"github.com/concave-dev/lumen/internal/version"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// buildBackendConfig converts daemon config to backend config
func buildBackendConfig() *backend.Config {
	backendConfig := backend.DefaultConfig()

	backendConfig.Kind = config.Global.Backend
	backendConfig.URL = config.Global.BackendURL
	backendConfig.Model = config.Global.Model
	backendConfig.Seed = config.Global.Seed
	backendConfig.Timeout = config.Global.BackendTimeout

	return backendConfig
}

// buildBatchingConfig converts daemon config to batching config
func buildBatchingConfig() *batching.Config {
	batchingConfig := batching.DefaultConfig()

	batchingConfig.MaxBatchSize = config.Global.MaxBatchSize
	batchingConfig.InferenceSteps = config.Global.InferenceSteps
	batchingConfig.BackendTimeoutMs = int(config.Global.BackendTimeout.Milliseconds())

	return batchingConfig
}

// buildCacheConfig converts daemon config to cache config
func buildCacheConfig() *cache.Config {
	cacheConfig := cache.DefaultConfig()

	cacheConfig.Addr = config.Global.RedisAddr
	cacheConfig.Password = config.Global.RedisPassword
	cacheConfig.DB = config.Global.RedisDB
	cacheConfig.TTL = config.Global.CacheTTL

	return cacheConfig
}

// buildAPIConfig converts daemon config to API config
func buildAPIConfig(batcher *batching.Batcher, remover backend.Remover, imageCache *cache.ImageCache, gatherer prometheus.Gatherer) *api.Config {
	apiConfig := api.DefaultConfig()

	apiConfig.BindAddr = config.Global.APIAddr
	apiConfig.BindPort = config.Global.APIPort
	apiConfig.InstanceName = config.Global.Name
	apiConfig.Batcher = batcher
	apiConfig.Remover = remover
	apiConfig.Cache = imageCache
	apiConfig.Sampler = resources.NewSampler(time.Now(), 5*time.Second)
	apiConfig.Gatherer = gatherer
	apiConfig.InferenceSteps = config.Global.InferenceSteps
	apiConfig.Model = config.Global.Model
	apiConfig.RateLimit = config.Global.RateLimit
	apiConfig.RateBurst = config.Global.RateBurst

	// A request may wait for a full backend call plus the batch ahead of it
	if minWrite := 2*config.Global.BackendTimeout + 30*time.Second; apiConfig.WriteTimeout < minWrite {
		apiConfig.WriteTimeout = minWrite
	}

	return apiConfig
}

// newRegistry returns the Prometheus registry served on /metrics
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// preBindAPIListener reserves the API port before any service starts
func preBindAPIListener() (net.Listener, int, error) {
	portBinder := netutil.NewPortBinder()
	addr := config.Global.APIAddr
	port := config.Global.APIPort

	if config.Global.IsExplicitlySet(config.APIAddrField) {
		logging.Info("Pre-binding API listener to explicit port %d", port)

		listener, err := portBinder.BindTCP(addr, port)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to pre-bind API listener to %s:%d: %w", addr, port, err)
		}
		return listener, port, nil
	}

	listener, actualPort, err := portBinder.BindTCPWithFallbackAndLimit(addr, port, config.Global.MaxPorts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to pre-bind API listener: %w", err)
	}

	if actualPort != port {
		logging.Warn("Default API port %d was busy, pre-bound to port %d", port, actualPort)
	} else {
		logging.Info("Pre-bound API listener to port %d", actualPort)
	}
	return listener, actualPort, nil
}

// Run starts the daemon and blocks until a shutdown signal arrives
func Run() error {
	logging.Info("Starting Lumen daemon v%s (instance %s)", version.LumendVersion, config.Global.Name)

	reg := newRegistry()

	generator, remover, err := backend.New(buildBackendConfig())
	if err != nil {
		logging.Error("Failed to create backend: %v", err)
		return fmt.Errorf("failed to create backend: %w", err)
	}

	batchingConfig := buildBatchingConfig()
	if err := batchingConfig.Validate(); err != nil {
		return fmt.Errorf("invalid batching config: %w", err)
	}
	batcher := batching.NewBatcher(generator, batchingConfig, reg)

	var imageCache *cache.ImageCache
	cacheConfig := buildCacheConfig()
	if cacheConfig.Enabled() {
		imageCache, err = cache.NewImageCache(context.Background(), cacheConfig)
		if err != nil {
			logging.Error("Failed to connect image cache: %v", err)
			return fmt.Errorf("failed to create image cache: %w", err)
		}
		defer func() {
			if err := imageCache.Close(); err != nil {
				logging.Error("Error closing image cache: %v", err)
			}
		}()
	} else {
		logging.Info("Image cache disabled (no --redis address)")
	}

	apiListener, apiPort, err := preBindAPIListener()
	if err != nil {
		logging.Error("Failed to pre-bind API listener: %v", err)
		return err
	}
	config.Global.APIPort = apiPort

	apiConfig := buildAPIConfig(batcher, remover, imageCache, reg)
	if err := apiConfig.Validate(); err != nil {
		apiListener.Close()
		return fmt.Errorf("invalid API config: %w", err)
	}

	batcher.Start()

	apiServer, err := api.NewServerWithListener(apiConfig, apiListener)
	if err != nil {
		logging.Error("Failed to create API server: %v", err)
		apiListener.Close()
		batcher.Stop()
		return fmt.Errorf("failed to create API server: %w", err)
	}
	if err := apiServer.Start(); err != nil {
		logging.Error("Failed to start API server: %v", err)
		batcher.Stop()
		return fmt.Errorf("failed to start API server: %w", err)
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	logging.Success("Lumen daemon started successfully")
	logging.Info("Daemon running... Press Ctrl+C to shutdown")
	logging.Info("  - HTTP API: %s:%d", config.Global.APIAddr, apiPort)
	logging.Info("  - Backend: %s (model %s, %d steps)", config.Global.Backend, config.Global.Model, config.Global.InferenceSteps)
	logging.Info("  - Batching: up to %d prompts per call, %v timeout", batchingConfig.MaxBatchSize, batchingConfig.GetBackendTimeout())
	if imageCache != nil {
		logging.Info("  - Image cache: %s (ttl %s)", config.Global.RedisAddr, config.Global.CacheTTL)
	}
	if config.Global.RateLimit > 0 {
		logging.Info("  - Rate limit: %.2f req/s per client, burst %d", config.Global.RateLimit, config.Global.RateBurst)
	}
	logging.Info("  - Max upload: %s", humanize.IBytes(uint64(apiConfig.MaxUploadBytes)))

	sig := <-sigCh
	logging.Info("Received signal: %v", sig)
	logging.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("Error shutting down API server: %v", err)
	}

	batcher.Stop()

	logging.Success("Lumen daemon shutdown completed")
	return nil
}
