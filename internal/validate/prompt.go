// Package validate: prompt validation applied by the generate handler before a
// request reaches the batching gateway.
package validate

import (
	"fmt"
	"strings"
)

const (
	// MaxPromptLength bounds the text prompt accepted by the generation endpoint
	MaxPromptLength = 2000

	// MaxStyleLength bounds the optional style qualifier
	MaxStyleLength = 200
)

// PromptFormat validates a generation prompt and its optional style.
// The prompt must contain non-whitespace text; neither value may contain
// control characters other than newline and tab.
func PromptFormat(text, style string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text prompt cannot be empty")
	}
	if err := ValidateField(text, fmt.Sprintf("max=%d", MaxPromptLength)); err != nil {
		return fmt.Errorf("text prompt exceeds %d characters", MaxPromptLength)
	}
	if err := ValidateField(style, fmt.Sprintf("max=%d", MaxStyleLength)); err != nil {
		return fmt.Errorf("style exceeds %d characters", MaxStyleLength)
	}
	if hasControlChars(text) {
		return fmt.Errorf("text prompt contains control characters")
	}
	if hasControlChars(style) {
		return fmt.Errorf("style contains control characters")
	}
	return nil
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if r == '\n' || r == '\t' {
			continue
		}
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}
