package batching

import (
	"context"
	"sync/atomic"

	"github.com/concave-dev/lumen/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// Batcher wires the queue, registry, dispatcher and gateway into one unit
// with a single lifecycle. It is what the API server and daemon hold.
type Batcher struct {
	queue      *Queue
	registry   *Registry
	dispatcher *Dispatcher
	gateway    *Gateway
	metrics    *Metrics

	maxBatchSize int
}

// NewBatcher builds the batching pipeline around backend. Metrics are
// registered with reg; pass nil to leave them unregistered.
func NewBatcher(backend Backend, config *Config, reg prometheus.Registerer) *Batcher {
	queue := NewQueue()
	registry := NewRegistry()
	metrics := NewMetrics(config.MetricsNamespace, reg, queue, registry)

	return &Batcher{
		queue:        queue,
		registry:     registry,
		dispatcher:   NewDispatcher(queue, registry, backend, config, metrics),
		gateway:      NewGateway(queue, registry, metrics),
		metrics:      metrics,
		maxBatchSize: config.MaxBatchSize,
	}
}

// Start begins background dispatching.
func (b *Batcher) Start() {
	b.dispatcher.Start()
	logging.Info("Batcher: Started batching pipeline")
}

// Stop closes the gateway to new requests, lets the in-flight batch finish
// and fails whatever is still queued.
func (b *Batcher) Stop() {
	b.gateway.Close()
	b.dispatcher.Stop()
	logging.Info("Batcher: Stopped batching pipeline")
}

// Submit generates one image for prompt. See Gateway.Submit.
func (b *Batcher) Submit(ctx context.Context, prompt Prompt) ([]byte, error) {
	return b.gateway.Submit(ctx, prompt)
}

// QueueLen returns the number of requests waiting for a batch.
func (b *Batcher) QueueLen() int {
	return b.queue.Len()
}

// PendingLen returns the number of registered, not yet taken requests.
func (b *Batcher) PendingLen() int {
	return b.registry.Len()
}

// GetMetrics returns current counters for the stats endpoint.
func (b *Batcher) GetMetrics() map[string]int64 {
	d := b.dispatcher
	g := b.gateway
	return map[string]int64{
		"queue_size":         int64(b.queue.Len()),
		"pending_handles":    int64(b.registry.Len()),
		"max_batch_size":     int64(b.maxBatchSize),
		"batches_dispatched": atomic.LoadInt64(&d.batchesDispatched),
		"batches_failed":     atomic.LoadInt64(&d.batchesFailed),
		"requests_resolved":  atomic.LoadInt64(&d.requestsResolved),
		"requests_discarded": atomic.LoadInt64(&d.requestsDiscarded),
		"invariant_errors":   atomic.LoadInt64(&d.invariantErrors),
		"requests_submitted": atomic.LoadInt64(&g.submitted),
		"requests_succeeded": atomic.LoadInt64(&g.succeeded),
		"requests_failed":    atomic.LoadInt64(&g.failed),
		"requests_cancelled": atomic.LoadInt64(&g.cancelled),
	}
}
