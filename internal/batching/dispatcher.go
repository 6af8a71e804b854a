package batching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/concave-dev/lumen/internal/logging"
	"github.com/concave-dev/lumen/internal/utils"
)

// Dispatcher is the sole consumer of the pending queue. A single goroutine
// drains up to maxBatchSize entries, calls the backend once per batch and
// resolves every drained request exactly once.
//
// BATCH POLICY:
//   - Batches are processed strictly one at a time; the backend never sees
//     two concurrent calls
//   - A backend error, panic, timeout or output length mismatch fails every
//     request in the batch
//   - Entries whose caller already gave up are discarded before the call
//   - No failure stops the loop; only Stop does
type Dispatcher struct {
	queue    *Queue
	registry *Registry
	backend  Backend
	metrics  *Metrics

	maxBatchSize   int
	inferenceSteps int
	backendTimeout time.Duration

	// Counters for GetMetrics
	batchesDispatched int64
	batchesFailed     int64
	requestsResolved  int64
	requestsDiscarded int64
	invariantErrors   int64

	// Lifecycle management
	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher over queue and registry. It does not
// start processing until Start is called.
func NewDispatcher(queue *Queue, registry *Registry, backend Backend, config *Config, metrics *Metrics) *Dispatcher {
	if metrics == nil {
		metrics = NewMetrics(config.MetricsNamespace, nil, queue, registry)
	}
	return &Dispatcher{
		queue:          queue,
		registry:       registry,
		backend:        backend,
		metrics:        metrics,
		maxBatchSize:   config.MaxBatchSize,
		inferenceSteps: config.InferenceSteps,
		backendTimeout: config.GetBackendTimeout(),
		stopCh:         make(chan struct{}),
	}
}

// Start launches the dispatch loop. Calling Start more than once has no effect.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		d.wg.Add(1)
		go d.run()
		logging.Info("Dispatcher: Started (max batch size: %d, inference steps: %d)",
			d.maxBatchSize, d.inferenceSteps)
	})
}

// Stop signals the loop to exit and waits for it. A batch already at the
// backend completes normally; entries still queued are failed with
// ErrDispatcherStopped so no caller is left waiting.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
	})
	d.wg.Wait()

	// Also covers a dispatcher that was never started.
	d.failPending()
	logging.Info("Dispatcher: Stopped")
}

// run is the dispatch loop.
func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopCh:
			return
		default:
		}

		batch := d.queue.TryDrainUpTo(d.maxBatchSize)

		if len(batch) == 0 {
			select {
			case <-d.stopCh:
				return
			case <-d.queue.Wake():
			}
			continue
		}

		d.safeDispatch(batch)
	}
}

// safeDispatch runs dispatch and converts any panic outside the backend call
// into a failure of the whole batch, keeping the loop alive.
func (d *Dispatcher) safeDispatch(batch []PendingEntry) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Dispatcher: Recovered from panic while dispatching batch: %v", r)
			failure := &BackendFailure{
				BatchID:      "unknown",
				RequestCount: len(batch),
				Err:          fmt.Errorf("dispatch panic: %v", r),
			}
			for _, entry := range batch {
				if err := d.registry.Resolve(entry.RequestID, Outcome{Err: failure}); err != nil &&
					!errors.Is(err, ErrAlreadyResolved) {
					d.reportInvariant(entry.RequestID, err)
				}
			}
		}
	}()

	d.dispatch(batch)
}

// dispatch sends one batch to the backend and resolves every entry in it.
func (d *Dispatcher) dispatch(batch []PendingEntry) {
	batchID, err := utils.GenerateID()
	if err != nil {
		batchID = "unknown"
	}

	live := make([]PendingEntry, 0, len(batch))
	for _, entry := range batch {
		if d.registry.IsAbandoned(entry.RequestID) {
			d.discard(entry.RequestID)
			continue
		}
		d.metrics.observeQueueWait(time.Since(entry.EnqueuedAt))
		live = append(live, entry)
	}

	if len(live) == 0 {
		logging.Debug("Dispatcher: Batch %s dropped, all %d callers gone", logging.FormatBatchID(batchID), len(batch))
		return
	}

	prompts := make([]Prompt, len(live))
	for i, entry := range live {
		prompts[i] = entry.Prompt
	}

	logging.Info("Dispatcher: Processing batch %s of %d requests (queue: %d)",
		logging.FormatBatchID(batchID), len(live), d.queue.Len())

	start := time.Now()
	images, err := d.invokeBackend(prompts)
	if err == nil && len(images) != len(live) {
		err = &OutputLengthError{Want: len(live), Got: len(images)}
	}
	took := time.Since(start)

	atomic.AddInt64(&d.batchesDispatched, 1)
	d.metrics.observeBatch(len(live), took, err)

	if err != nil {
		atomic.AddInt64(&d.batchesFailed, 1)
		logging.Error("Dispatcher: Batch %s of %d requests failed after %v: %v",
			logging.FormatBatchID(batchID), len(live), took, err)

		failure := &BackendFailure{BatchID: batchID, RequestCount: len(live), Err: err}
		for _, entry := range live {
			d.resolve(entry.RequestID, Outcome{Err: failure})
		}
		return
	}

	for i, entry := range live {
		d.resolve(entry.RequestID, Outcome{Image: images[i]})
		logging.Debug("Dispatcher: Image ready for request %s", logging.FormatRequestID(entry.RequestID))
	}

	logging.Info("Dispatcher: Batch %s completed in %v", logging.FormatBatchID(batchID), took)
}

// invokeBackend calls the backend once, bounded by the backend timeout, and
// turns a panic into an error.
func (d *Dispatcher) invokeBackend(prompts []Prompt) (images [][]byte, err error) {
	ctx := context.Background()
	if d.backendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.backendTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			images = nil
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()

	return d.backend.GenerateBatch(ctx, prompts, d.inferenceSteps)
}

// resolve delivers o to id, logging invariant violations instead of
// propagating them.
func (d *Dispatcher) resolve(id string, o Outcome) {
	if err := d.registry.Resolve(id, o); err != nil {
		d.reportInvariant(id, err)
		return
	}
	atomic.AddInt64(&d.requestsResolved, 1)
}

// discard releases the handle of a request whose caller already left. It
// does not count as resolved.
func (d *Dispatcher) discard(id string) {
	if err := d.registry.Resolve(id, Outcome{Err: context.Canceled}); err != nil {
		d.reportInvariant(id, err)
		return
	}
	atomic.AddInt64(&d.requestsDiscarded, 1)
	d.metrics.observeRequest(outcomeDiscarded)
}

func (d *Dispatcher) reportInvariant(id string, err error) {
	atomic.AddInt64(&d.invariantErrors, 1)
	logging.Error("Dispatcher: Invariant violation resolving request %s: %v", logging.FormatRequestID(id), err)
}

// failPending resolves every entry still queued with ErrDispatcherStopped.
func (d *Dispatcher) failPending() {
	failed := 0
	for {
		batch := d.queue.TryDrainUpTo(d.maxBatchSize)
		if len(batch) == 0 {
			break
		}
		for _, entry := range batch {
			d.resolve(entry.RequestID, Outcome{Err: ErrDispatcherStopped})
			failed++
		}
	}
	if failed > 0 {
		logging.Warn("Dispatcher: Failed %d queued requests during shutdown", failed)
	}
}
