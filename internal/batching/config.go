package batching

import (
	"fmt"
	"time"

	"github.com/concave-dev/lumen/internal/validate"
)

// Config holds the tuning parameters of the batching core.
//
// MaxBatchSize bounds how many prompts reach the backend in a single call.
// InferenceSteps is passed to the backend untouched. BackendTimeoutMs bounds a
// single backend call; a timed-out call fails its whole batch.
type Config struct {
	MaxBatchSize     int    `json:"max_batch_size" yaml:"max_batch_size"`
	InferenceSteps   int    `json:"inference_steps" yaml:"inference_steps"`
	BackendTimeoutMs int    `json:"backend_timeout_ms" yaml:"backend_timeout_ms"`
	MetricsNamespace string `json:"metrics_namespace" yaml:"metrics_namespace"`
}

// DefaultConfig returns a Config with the values the service ships with: four
// prompts per batch at 20 inference steps, and two minutes per backend call.
func DefaultConfig() *Config {
	return &Config{
		MaxBatchSize:     4,
		InferenceSteps:   20,
		BackendTimeoutMs: 120000,
		MetricsNamespace: "lumen",
	}
}

// Validate checks that all values are within operable bounds.
func (c *Config) Validate() error {
	if err := validate.ValidateIntRange(c.MaxBatchSize, 1, 64, "max batch size"); err != nil {
		return err
	}
	if err := validate.ValidateIntRange(c.InferenceSteps, 1, 500, "inference steps"); err != nil {
		return err
	}
	if err := validate.ValidateField(c.BackendTimeoutMs, "min=0"); err != nil {
		return fmt.Errorf("backend timeout must be non-negative, got %d ms", c.BackendTimeoutMs)
	}
	return validate.ValidateRequiredString(c.MetricsNamespace, "metrics namespace")
}

// GetBackendTimeout converts the millisecond timeout to a time.Duration.
// Zero means backend calls are not bounded.
func (c *Config) GetBackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutMs) * time.Millisecond
}
