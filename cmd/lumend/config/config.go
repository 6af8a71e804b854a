// Package config holds the lumend daemon configuration.
//
// Values arrive from three places, in increasing priority: built-in defaults,
// an optional YAML or JSON config file (--config), and command line flags.
// Environment overrides (DEBUG, LUMEN_BACKEND_URL, REDIS_ADDR) apply on top of
// file values but never over a flag the user set explicitly.
//
// EXPLICIT OVERRIDE TRACKING:
// Cobra always populates flag variables with their defaults, so the config
// records which flags were actually given. That decides whether a file value
// may replace a field, and whether the API port may fall back to the next
// free port when the default is busy.
package config

import (
	"time"

	configDefaults "github.com/concave-dev/lumen/internal/config"
)

// ConfigField identifies a flag-backed field for explicit-set tracking
type ConfigField int

const (
	APIAddrField ConfigField = iota
	BackendField
	BackendURLField
	ModelField
	SeedField
	MaxBatchSizeField
	InferenceStepsField
	BackendTimeoutField
	RedisAddrField
	RedisPasswordField
	RedisDBField
	CacheTTLField
	RateLimitField
	RateBurstField
	LogLevelField
	LogFileField
	LogMaxSizeField
	LogMaxBackupsField
	NameField
)

const (
	DefaultAPI            = configDefaults.DefaultBindAddr + ":8000"
	DefaultLogLevel       = configDefaults.DefaultLogLevel
	DefaultBackend        = configDefaults.DefaultBackendKind
	DefaultModel          = configDefaults.DefaultModel
	DefaultMaxBatchSize   = 4
	DefaultInferenceSteps = 20
	DefaultBackendTimeout = 2 * time.Minute
	DefaultCacheTTL       = time.Hour
	DefaultRateBurst      = 10
	DefaultMaxPorts       = 100
)

// Config holds all daemon configuration values
type Config struct {
	APIAddr    string // HTTP API address as given (host:port), split during validation
	APIPort    int    // HTTP API port (derived from APIAddr)
	ConfigFile string // Optional YAML/JSON config file
	Name       string // Instance name reported by /health, generated when empty

	Backend        string        // Generation backend: placeholder or http
	BackendURL     string        // Inference worker base URL for the http backend
	Model          string        // Model name sent to the worker, part of the cache key
	Seed           int64         // Generator seed sent to the worker
	MaxBatchSize   int           // Prompts per backend call
	InferenceSteps int           // Passed through to the backend
	BackendTimeout time.Duration // Bound on one backend call

	RedisAddr     string        // Redis address for the image cache, empty disables caching
	RedisPassword string        // Redis AUTH password
	RedisDB       int           // Redis logical database
	CacheTTL      time.Duration // Expiry of cached images

	RateLimit float64 // Generation requests per second per client IP, 0 disables
	RateBurst int     // Token bucket size

	LogLevel      string // Log level: DEBUG, INFO, WARN, ERROR
	LogFile       string // Rotating log file path, empty logs to the terminal
	LogMaxSize    int    // Megabytes per log file before rotation
	LogMaxBackups int    // Rotated files to keep

	MaxPorts int // Ports to try when the default API port is busy

	explicit map[ConfigField]bool
}

// Global configuration instance
var Global = Config{
	MaxPorts: DefaultMaxPorts,
}

// SetExplicitlySet marks a configuration field as explicitly set by the user
func (c *Config) SetExplicitlySet(field ConfigField, value bool) {
	if c.explicit == nil {
		c.explicit = make(map[ConfigField]bool)
	}
	c.explicit[field] = value
}

// IsExplicitlySet returns whether a configuration field was explicitly set by the user
func (c *Config) IsExplicitlySet(field ConfigField) bool {
	return c.explicit[field]
}
