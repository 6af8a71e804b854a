package api

import (
	"testing"

	"github.com/concave-dev/lumen/internal/backend"
	"github.com/concave-dev/lumen/internal/batching"
)

// testServerConfig returns a valid config backed by the placeholder backend
func testServerConfig() *Config {
	config := DefaultConfig()
	config.BindAddr = "127.0.0.1"
	config.Batcher = batching.NewBatcher(backend.NewPlaceholderGenerator(), batching.DefaultConfig(), nil)
	config.Remover = backend.NewPlaceholderRemover()
	return config
}

// TestConfig_Validate_Valid tests Config.Validate() with valid configuration
func TestConfig_Validate_Valid(t *testing.T) {
	config := testServerConfig()

	err := config.Validate()
	if err != nil {
		t.Errorf("Config.Validate() = %v, want nil", err)
	}
}

// TestConfig_Validate_Invalid tests Config.Validate() with key invalid cases
func TestConfig_Validate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty bind address", func(c *Config) { c.BindAddr = "" }},
		{"invalid port", func(c *Config) { c.BindPort = 0 }},
		{"invalid port high", func(c *Config) { c.BindPort = 99999 }},
		{"nil batcher", func(c *Config) { c.Batcher = nil }},
		{"nil remover", func(c *Config) { c.Remover = nil }},
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }},
		{"rate limit without burst", func(c *Config) { c.RateLimit = 5; c.RateBurst = 0 }},
		{"zero upload size", func(c *Config) { c.MaxUploadBytes = 0 }},
		{"zero write timeout", func(c *Config) { c.WriteTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testServerConfig()
			tt.modify(config)

			err := config.Validate()
			if err == nil {
				t.Errorf("Config.Validate() = nil, want error for %s", tt.name)
			}
		})
	}
}
