// Package validate provides configuration validation utilities for Lumen
// components.
//
// This file implements the validation patterns shared by the API, backend,
// cache and batching configs. All functions go through the
// go-playground/validator instance in network.go.
//
// VALIDATION UTILITIES:
//   - Port validation: standard port range checking (1-65535)
//   - String validation: required, non-empty fields
//   - Range validation: bounded integers such as batch size and inference steps
//   - Timeout validation: positive durations
//   - URL validation: inference worker endpoints
package validate

import (
	"fmt"
	"time"
)

// ValidatePortRange validates that a port number is within 1-65535.
func ValidatePortRange(port int) error {
	return ValidateField(port, "required,min=1,max=65535")
}

// ValidateRequiredString validates that a string field is not empty.
func ValidateRequiredString(value, fieldName string) error {
	if err := ValidateField(value, "required"); err != nil {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidatePositiveTimeout validates that a timeout duration is positive.
func ValidatePositiveTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// ValidateIntRange validates that value lies within [min, max].
func ValidateIntRange(value, min, max int, name string) error {
	if err := ValidateField(value, fmt.Sprintf("min=%d,max=%d", min, max)); err != nil {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, value)
	}
	return nil
}

// ValidateHTTPURL validates an absolute http or https URL such as an
// inference worker endpoint.
func ValidateHTTPURL(value, name string) error {
	if err := ValidateField(value, "required,http_url"); err != nil {
		return fmt.Errorf("%s must be an http(s) URL, got '%s'", name, value)
	}
	return nil
}
