package batching

import (
	"context"
	"sync"
)

// Outcome is the result of one generation request: an image on success, or
// a non-nil Err on failure.
type Outcome struct {
	Image []byte
	Err   error
}

// Succeeded reports whether the outcome carries an image.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// CompletionHandle is a single-fire signal paired with a write-once result
// slot. The outcome is stored before done is closed, so any reader that
// observes Done has a fully written outcome.
type CompletionHandle struct {
	done    chan struct{}
	once    sync.Once
	outcome Outcome
}

func newCompletionHandle() *CompletionHandle {
	return &CompletionHandle{done: make(chan struct{})}
}

// Done returns a channel closed when the handle is resolved.
func (h *CompletionHandle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the handle is resolved or ctx is done. It does not remove
// the registry entry; callers going through the registry use Take instead.
func (h *CompletionHandle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-h.done:
		return h.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// resolved reports whether the handle has been signaled.
func (h *CompletionHandle) resolved() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// resolve writes the outcome and signals the handle. Returns false if the
// handle was already resolved.
func (h *CompletionHandle) resolve(o Outcome) bool {
	fired := false
	h.once.Do(func() {
		h.outcome = o
		close(h.done)
		fired = true
	})
	return fired
}

// registryEntry tracks a handle and whether its caller has given up on it.
type registryEntry struct {
	handle    *CompletionHandle
	abandoned bool
}

// Registry maps request IDs to completion handles. All operations are safe
// for concurrent use by any number of callers plus the dispatcher.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
	}
}

// Register creates and stores a fresh handle for id.
func (r *Registry) Register(id string) (*CompletionHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return nil, &DuplicateRequestIDError{RequestID: id}
	}

	h := newCompletionHandle()
	r.entries[id] = &registryEntry{handle: h}
	return h, nil
}

// Resolve writes o into the handle for id and signals it.
//
// If the caller abandoned the request, the outcome is discarded and the entry
// removed; this is not an error.
func (r *Registry) Resolve(id string, o Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return &UnknownRequestIDError{RequestID: id}
	}

	if entry.abandoned {
		delete(r.entries, id)
		return nil
	}

	if !entry.handle.resolve(o) {
		return ErrAlreadyResolved
	}
	return nil
}

// Take returns the outcome for id and removes the entry. It must only be
// called after the handle signaled; an unsignaled handle yields
// ErrNotResolved and stays registered.
func (r *Registry) Take(id string) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return Outcome{}, &UnknownRequestIDError{RequestID: id}
	}

	if !entry.handle.resolved() {
		return Outcome{}, ErrNotResolved
	}

	delete(r.entries, id)
	return entry.handle.outcome, nil
}

// Unregister removes id without reading its outcome. Used on the setup
// failure path before the entry could have been dispatched.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; !exists {
		return false
	}
	delete(r.entries, id)
	return true
}

// Abandon records that the caller stopped waiting for id.
//
// An already resolved entry is removed immediately. Otherwise the entry is
// marked and removed by the dispatcher's eventual Resolve, so the two never
// race on the handle.
func (r *Registry) Abandon(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return
	}

	if entry.handle.resolved() {
		delete(r.entries, id)
		return
	}
	entry.abandoned = true
}

// IsAbandoned reports whether the caller for id has given up.
func (r *Registry) IsAbandoned(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	return exists && entry.abandoned
}

// Len returns the number of registered request IDs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
