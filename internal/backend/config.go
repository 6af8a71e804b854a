// Package backend: configuration for selecting between the in-process
// placeholder backend and a remote HTTP inference worker.
package backend

import (
	"fmt"
	"time"

	"github.com/concave-dev/lumen/internal/config"
	"github.com/concave-dev/lumen/internal/validate"
)

// Config selects and configures the generation and removal backends.
type Config struct {
	Kind    string        `json:"kind" yaml:"kind"`
	URL     string        `json:"url" yaml:"url"`
	Model   string        `json:"model" yaml:"model"`
	Seed    int64         `json:"seed" yaml:"seed"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// DefaultConfig returns the in-process placeholder backend.
func DefaultConfig() *Config {
	return &Config{
		Kind:    config.DefaultBackendKind,
		Model:   config.DefaultModel,
		Seed:    0,
		Timeout: 2 * time.Minute,
	}
}

// Validate checks the config for the selected kind.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindPlaceholder:
	case KindHTTP:
		if err := validate.ValidateHTTPURL(c.URL, "backend URL"); err != nil {
			return err
		}
		if err := validate.ValidateRequiredString(c.Model, "model"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("backend kind must be %q or %q, got %q", KindPlaceholder, KindHTTP, c.Kind)
	}

	if err := validate.ValidatePositiveTimeout(c.Timeout, "backend timeout"); err != nil {
		return err
	}
	return nil
}
