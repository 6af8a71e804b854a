package batching

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/concave-dev/lumen/internal/logging"
	"github.com/concave-dev/lumen/internal/utils"
)

// Gateway is the per-call entry point into the batching core. Each Submit
// registers a completion handle, enqueues its prompt and suspends until the
// dispatcher resolves the handle or the caller's context ends.
type Gateway struct {
	queue    *Queue
	registry *Registry
	metrics  *Metrics
	newID    func() string

	// mu makes the closed check, registration and enqueue atomic with
	// respect to Close, so nothing is enqueued after the dispatcher drained.
	mu     sync.RWMutex
	closed bool

	submitted int64
	succeeded int64
	failed    int64
	cancelled int64
}

// NewGateway creates a gateway feeding queue and registry.
func NewGateway(queue *Queue, registry *Registry, metrics *Metrics) *Gateway {
	if metrics == nil {
		metrics = NewMetrics(DefaultConfig().MetricsNamespace, nil, queue, registry)
	}
	return &Gateway{
		queue:    queue,
		registry: registry,
		metrics:  metrics,
		newID:    utils.GenerateRequestID,
	}
}

// Submit generates one image for prompt through the batching pipeline.
//
// It returns the image on success. A failed batch yields a *BackendFailure,
// shutdown yields ErrGatewayClosed or ErrDispatcherStopped, and cancellation
// yields ctx.Err(). Submit never retries.
func (g *Gateway) Submit(ctx context.Context, prompt Prompt) ([]byte, error) {
	id := g.newID()

	handle, err := g.enqueue(ctx, id, prompt)
	if err != nil {
		return nil, err
	}

	atomic.AddInt64(&g.submitted, 1)
	logging.Debug("Gateway: Request %s queued", logging.FormatRequestID(id))

	select {
	case <-handle.Done():
		outcome, err := g.registry.Take(id)
		if err != nil {
			logging.Error("Gateway: Failed to take outcome for request %s: %v", logging.FormatRequestID(id), err)
			atomic.AddInt64(&g.failed, 1)
			g.metrics.observeRequest(outcomeFailure)
			return nil, err
		}

		if !outcome.Succeeded() {
			atomic.AddInt64(&g.failed, 1)
			g.metrics.observeRequest(outcomeFailure)
			logging.Warn("Gateway: Request %s failed: %v", logging.FormatRequestID(id), outcome.Err)
			return nil, outcome.Err
		}

		atomic.AddInt64(&g.succeeded, 1)
		g.metrics.observeRequest(outcomeSuccess)
		return outcome.Image, nil

	case <-ctx.Done():
		g.registry.Abandon(id)
		atomic.AddInt64(&g.cancelled, 1)
		g.metrics.observeRequest(outcomeCancelled)
		logging.Debug("Gateway: Request %s abandoned: %v", logging.FormatRequestID(id), ctx.Err())
		return nil, ctx.Err()
	}
}

// enqueue registers id and pushes the prompt onto the queue.
func (g *Gateway) enqueue(ctx context.Context, id string, prompt Prompt) (*CompletionHandle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.closed {
		g.metrics.observeRequest(outcomeRejected)
		return nil, ErrGatewayClosed
	}

	handle, err := g.registry.Register(id)
	if err != nil {
		logging.Error("Gateway: Failed to register request %s: %v", logging.FormatRequestID(id), err)
		return nil, err
	}

	// A caller that is already gone never reaches the queue.
	if err := ctx.Err(); err != nil {
		g.registry.Unregister(id)
		g.metrics.observeRequest(outcomeCancelled)
		return nil, err
	}

	g.queue.Enqueue(PendingEntry{
		RequestID:  id,
		Prompt:     prompt,
		EnqueuedAt: time.Now(),
	})

	return handle, nil
}

// Close rejects all later Submit calls with ErrGatewayClosed. Requests
// already queued are unaffected.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}
