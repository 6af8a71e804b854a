// Package config provides common default configuration values shared across
// Lumen components (HTTP API, batching core, backends and CLI).
package config

const (
	// DefaultBindAddr is the default bind address for the HTTP API.
	// Using 0.0.0.0 allows binding to all available network interfaces
	// TODO: Add support for IPv6 bind addresses (::)
	DefaultBindAddr = "0.0.0.0"

	// DefaultAPIPort matches the port the service has always listened on
	DefaultAPIPort = 8000

	// DefaultLogLevel is the default log level for all components
	DefaultLogLevel = "INFO"

	// DefaultLogMaxSizeMB and DefaultLogMaxBackups size the rotating log file
	DefaultLogMaxSizeMB  = 5
	DefaultLogMaxBackups = 5

	// DefaultBackendKind selects the in-process placeholder renderer so the
	// daemon runs without an inference worker
	DefaultBackendKind = "placeholder"

	// DefaultModel is the model name forwarded to HTTP inference workers
	DefaultModel = "sdxl"

	// DefaultMetricsNamespace prefixes every Prometheus metric
	DefaultMetricsNamespace = "lumen"
)
