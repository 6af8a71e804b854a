package batching

import (
	"strings"
	"testing"
	"time"
)

// TestConfig_Validate tests batching config bounds
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"batch size one", func(c *Config) { c.MaxBatchSize = 1 }, false},
		{"zero batch size", func(c *Config) { c.MaxBatchSize = 0 }, true},
		{"batch size too large", func(c *Config) { c.MaxBatchSize = 65 }, true},
		{"zero steps", func(c *Config) { c.InferenceSteps = 0 }, true},
		{"too many steps", func(c *Config) { c.InferenceSteps = 501 }, true},
		{"unbounded backend", func(c *Config) { c.BackendTimeoutMs = 0 }, false},
		{"negative timeout", func(c *Config) { c.BackendTimeoutMs = -1 }, true},
		{"empty namespace", func(c *Config) { c.MetricsNamespace = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_ValidateMessages tests that range errors name the field and bounds
func TestConfig_ValidateMessages(t *testing.T) {
	config := DefaultConfig()
	config.MaxBatchSize = 65

	err := config.Validate()
	if err == nil || !strings.Contains(err.Error(), "max batch size must be between 1 and 64, got 65") {
		t.Errorf("Validate() error = %v, want max batch size range error", err)
	}

	config = DefaultConfig()
	config.MetricsNamespace = ""
	err = config.Validate()
	if err == nil || !strings.Contains(err.Error(), "metrics namespace cannot be empty") {
		t.Errorf("Validate() error = %v, want empty namespace error", err)
	}
}

// TestConfig_Defaults tests the shipped default values
func TestConfig_Defaults(t *testing.T) {
	config := DefaultConfig()

	if config.MaxBatchSize != 4 {
		t.Errorf("MaxBatchSize = %d, want 4", config.MaxBatchSize)
	}
	if config.InferenceSteps != 20 {
		t.Errorf("InferenceSteps = %d, want 20", config.InferenceSteps)
	}
	if got := config.GetBackendTimeout(); got != 2*time.Minute {
		t.Errorf("GetBackendTimeout() = %v, want 2m", got)
	}
}
