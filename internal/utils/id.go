// Package utils provides common utility functions for the Lumen image service.
//
// This file implements ID generation used across the service. Request IDs join
// the pending queue, the completion registry and the result slot for a single
// generation call, so they must never repeat for the lifetime of the process.
//
// ID GENERATION STRATEGY:
// Request IDs are random 128-bit UUIDs (version 4). Short IDs are 12-character
// hex strings used for log correlation where a full UUID would be noise.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// ShortIDLength is the length of truncated IDs shown in logs and tables.
const ShortIDLength = 12

// GenerateRequestID creates a new random request identifier.
//
// Returns format: "3f2b8c1e-9d4a-4c7b-a1e2-5f6d7c8b9a0e"
func GenerateRequestID() string {
	return uuid.NewString()
}

// GenerateID creates a unique 12-character hex identifier. Used for batch IDs
// where only process-local uniqueness for log correlation is needed.
//
// Returns format: "a1b2c3d4e5f6" (12 hex characters, similar to Docker short IDs)
func GenerateID() (string, error) {
	// Generate 6 bytes of random data (12 hex characters)
	bytes := make([]byte, 6)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// TruncateIDSafe shortens an ID to ShortIDLength characters for display.
// Hyphens are stripped first so UUIDs and hex IDs truncate to the same shape.
// IDs already shorter than the limit are returned unchanged.
func TruncateIDSafe(id string) string {
	compact := make([]byte, 0, len(id))
	for i := 0; i < len(id); i++ {
		if id[i] != '-' {
			compact = append(compact, id[i])
		}
	}
	if len(compact) <= ShortIDLength {
		return string(compact)
	}
	return string(compact[:ShortIDLength])
}
