// Package logging provides ID formatting utilities for consistent ID display
// across dispatcher, gateway and API log lines.
//
// ID FORMATTING STRATEGY:
//   - Debug logs: full request and batch IDs for tracing one request end to end
//   - Info/Warn/Error/Success logs: 12-character short IDs for readability
//
// USAGE PATTERNS:
//   - FormatRequestID: generation request IDs minted by the gateway
//   - FormatBatchID: batch IDs minted by the dispatcher per backend call
//   - FormatID: generic formatting for any other identifier
package logging

import (
	"github.com/concave-dev/lumen/internal/utils"
)

// FormatID returns the full ID at DEBUG level and a truncated short ID
// otherwise, keeping INFO logs readable while preserving full IDs for debugging.
func FormatID(id string) string {
	if IsDebugEnabled() {
		return id
	}
	return utils.TruncateIDSafe(id)
}

// FormatRequestID formats a generation request ID for log output
func FormatRequestID(requestID string) string {
	return FormatID(requestID)
}

// FormatBatchID formats a dispatcher batch ID for log output
func FormatBatchID(batchID string) string {
	return FormatID(batchID)
}
