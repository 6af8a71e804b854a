// Package backend provides the image generation and background removal
// implementations the daemon plugs into the batching core.
//
// Two kinds are available:
//   - placeholder: renders deterministic solid-color JPEGs in process, so the
//     daemon can run without an inference worker
//   - http: forwards batches to an inference worker over HTTP
//
// Generators implement batching.Backend. Removers are called directly by the
// API layer and are never batched.
package backend

import (
	"context"
	"fmt"

	"github.com/concave-dev/lumen/internal/batching"
)

// Backend kinds accepted by Config.Kind.
const (
	KindPlaceholder = "placeholder"
	KindHTTP        = "http"
)

// Remover strips the background from a single image and returns JPEG bytes.
type Remover interface {
	RemoveBackground(ctx context.Context, image []byte) ([]byte, error)
}

// New builds the generator and remover selected by config.Kind.
func New(config *Config) (batching.Backend, Remover, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid backend config: %w", err)
	}

	switch config.Kind {
	case KindPlaceholder:
		return NewPlaceholderGenerator(), NewPlaceholderRemover(), nil
	case KindHTTP:
		return NewHTTPGenerator(config), NewHTTPRemover(config), nil
	default:
		return nil, nil, fmt.Errorf("unknown backend kind: %s", config.Kind)
	}
}
