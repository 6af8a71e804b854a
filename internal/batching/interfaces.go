// Package batching implements the request batching and dispatch core of the
// Lumen image service.
//
// Callers submit one prompt at a time through the Gateway. Pending prompts
// collect in an unbounded Queue while a single Dispatcher goroutine drains
// them in groups of at most MaxBatchSize, calls the generation Backend once
// per group and fans each image back to its caller through the Registry.
//
// REQUEST LIFECYCLE:
//   - Gateway mints a request ID, registers a CompletionHandle and enqueues
//   - Dispatcher drains up to MaxBatchSize entries and invokes the backend once
//   - Each handle is resolved with its positional output, or every handle in
//     the batch is resolved with a BackendFailure
//   - Gateway wakes, takes the outcome (removing the registry entry) and returns
//
// The package has no knowledge of HTTP; the API layer maps a BackendFailure to
// a 503 response.
package batching

import "context"

// Prompt is one generation request as submitted by a caller. It is opaque to
// the dispatcher beyond being handed to the backend unchanged.
type Prompt struct {
	Text  string `json:"text_prompt"`
	Style string `json:"style,omitempty"`
}

// Backend generates images for an ordered list of prompts in one call.
//
// On success it returns exactly one image per prompt, in input order. Any
// returned error, a panic, or an output slice of a different length fails the
// whole batch. steps is the inference effort passed through from config.
type Backend interface {
	GenerateBatch(ctx context.Context, prompts []Prompt, steps int) ([][]byte, error)
}

// BackendFunc adapts a plain function to the Backend interface.
type BackendFunc func(ctx context.Context, prompts []Prompt, steps int) ([][]byte, error)

// GenerateBatch calls f.
func (f BackendFunc) GenerateBatch(ctx context.Context, prompts []Prompt, steps int) ([][]byte, error) {
	return f(ctx, prompts, steps)
}
