// Package netutil provides network utilities for the Lumen daemon and its
// backend clients.
//
// This file classifies network errors by type rather than by message text, so
// the checks hold across operating systems and Go versions.
//
// Key capabilities:
//   - Address-in-use detection when pre-binding the API listener
//   - Connection-refused detection for inference workers that are not up,
//     which decides whether a batch may be sent to a worker again
//
// Errors are unwrapped through net.OpError and os.SyscallError down to the
// syscall constant.
package netutil

import (
	"errors"
	"net"
	"syscall"
)

// IsAddressInUseError reports whether err is an EADDRINUSE bind failure.
func IsAddressInUseError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.EADDRINUSE)
	}
	return false
}

// IsConnectionRefusedError reports whether err is an ECONNREFUSED dial
// failure, which for lumenctl means no daemon is listening at --api.
func IsConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return false
}
