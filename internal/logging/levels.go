// Package logging: level name validation shared by the lumend and lumenctl
// --log-level flags.
package logging

import (
	"fmt"
	"sort"
	"strings"
)

// ValidLogLevels is the set of level names accepted by lumend and lumenctl
// flags, config files and the DEBUG environment override. Names are uppercase.
var ValidLogLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// IsValidLogLevel reports whether level is one of ValidLogLevels.
func IsValidLogLevel(level string) bool {
	return ValidLogLevels[level]
}

// ValidateLogLevel returns an error naming the accepted levels when level is
// not supported.
func ValidateLogLevel(level string) error {
	if !IsValidLogLevel(level) {
		names := make([]string, 0, len(ValidLogLevels))
		for name := range ValidLogLevels {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("invalid log level: %s (valid: %s)", level, strings.Join(names, ", "))
	}
	return nil
}
