package batching

import (
	"errors"
	"fmt"
)

var (
	// ErrNotResolved is returned by Registry.Take when the handle has not been
	// signaled yet. The entry is left in place.
	ErrNotResolved = errors.New("request not resolved yet")

	// ErrAlreadyResolved is returned by Registry.Resolve on a second write to
	// the same handle.
	ErrAlreadyResolved = errors.New("request already resolved")

	// ErrGatewayClosed is returned by Gateway.Submit after shutdown began.
	ErrGatewayClosed = errors.New("gateway closed")

	// ErrDispatcherStopped is the failure delivered to requests still queued
	// when the dispatcher stops.
	ErrDispatcherStopped = errors.New("dispatcher stopped")
)

// DuplicateRequestIDError indicates a request ID was registered twice. This
// is an invariant violation in ID generation, not a user error.
type DuplicateRequestIDError struct {
	RequestID string
}

func (e *DuplicateRequestIDError) Error() string {
	return fmt.Sprintf("duplicate request ID: %s", e.RequestID)
}

// UnknownRequestIDError indicates an operation on a request ID that is not
// registered, either never registered or already taken.
type UnknownRequestIDError struct {
	RequestID string
}

func (e *UnknownRequestIDError) Error() string {
	return fmt.Sprintf("unknown request ID: %s", e.RequestID)
}

// OutputLengthError indicates the backend returned a different number of
// images than prompts it was given.
type OutputLengthError struct {
	Want int
	Got  int
}

func (e *OutputLengthError) Error() string {
	return fmt.Sprintf("backend returned %d images for %d prompts", e.Got, e.Want)
}

// BackendFailure is the failure outcome delivered to every request of a batch
// whose backend call failed. BatchID correlates the failure with dispatcher logs.
type BackendFailure struct {
	BatchID      string
	RequestCount int
	Err          error
}

func (e *BackendFailure) Error() string {
	return fmt.Sprintf("batch %s of %d requests failed: %v", e.BatchID, e.RequestCount, e.Err)
}

func (e *BackendFailure) Unwrap() error {
	return e.Err
}

// IsFailure reports whether err is a generation failure the caller should
// surface as "service unavailable, retry later".
func IsFailure(err error) bool {
	var bf *BackendFailure
	return errors.As(err, &bf) || errors.Is(err, ErrGatewayClosed) || errors.Is(err, ErrDispatcherStopped)
}
