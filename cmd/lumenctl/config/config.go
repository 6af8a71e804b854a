// Package config provides configuration management for the lumenctl CLI.
package config

import "github.com/concave-dev/lumen/internal/version"

const (
	DefaultAPIAddr = "127.0.0.1:8000" // Default API server address (routable)

	// DefaultImageTimeout bounds one image request in seconds. Generation
	// waits for a whole batch, so it is far longer than --timeout.
	DefaultImageTimeout = 300
)

// Version returns the current lumenctl CLI version from the centralized version package
var Version = version.LumenctlVersion

// Global holds the global CLI configuration
var Global struct {
	APIAddr  string // Address of Lumen API server to connect to
	LogLevel string // Log level for CLI operations
	Timeout  int    // Connection timeout in seconds
	Verbose  bool   // Show verbose output
	Output   string // Output format: table, json
}

// Generate holds the generate command configuration
var Generate struct {
	Prompt  string // Text prompt
	Style   string // Optional style qualifier
	Out     string // Output file; with --count > 1 an index is inserted before the extension
	Count   int    // Number of concurrent requests
	Timeout int    // Per-request timeout in seconds
}

// RemoveBg holds the remove-bg command configuration
var RemoveBg struct {
	In      string // Input image file
	Out     string // Output JPEG file
	Timeout int    // Request timeout in seconds
}
