// Package validate provides input validation utilities for Lumen, built on
// go-playground/validator so that flags, config files and API request bodies
// share one set of rules and error messages.
//
// VALIDATION COVERAGE:
//   - Network addresses: host:port parsing for the API listener and CLI target
//   - Configuration: port ranges, required strings, positive durations, URLs
//   - Prompts: generation request text and style limits
package validate

import (
	"fmt"
	"net"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is the shared validator instance; validator caches struct
	// metadata, so one instance is reused for the whole process.
	validate *validator.Validate
)

func init() {
	validate = validator.New()
}

// NetworkAddress is a parsed and validated host:port pair.
type NetworkAddress struct {
	Host string `validate:"required,ip"`
	Port int    `validate:"min=0,max=65535"`
}

func (na NetworkAddress) String() string {
	return net.JoinHostPort(na.Host, strconv.Itoa(na.Port))
}

// ParseBindAddress parses "host:port" into a NetworkAddress. The host must be
// an IP literal; port 0 is accepted here and rejected by callers that need a
// fixed port.
func ParseBindAddress(addr string) (*NetworkAddress, error) {
	if addr == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address format '%s': %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port '%s': %w", portStr, err)
	}

	netAddr := &NetworkAddress{
		Host: host,
		Port: port,
	}

	if err := validate.Struct(netAddr); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return netAddr, nil
}

// ValidateField validates a single value against a validator tag string.
func ValidateField(value any, tag string) error {
	return validate.Var(value, tag)
}

// ValidateStruct validates a struct using its `validate` tags.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// ValidateDialAddress validates a "host:port" address to connect to, where
// host may be a hostname such as "localhost" or "redis".
func ValidateDialAddress(addr, name string) error {
	if err := ValidateField(addr, "required,hostname_port"); err != nil {
		return fmt.Errorf("%s must be host:port, got '%s'", name, addr)
	}
	return nil
}
