package validate

import (
	"strings"
	"testing"
)

func TestPromptFormat(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		style   string
		wantErr string
	}{
		{"plain prompt", "a lighthouse at dusk", "", ""},
		{"prompt with style", "a lighthouse at dusk", "watercolor", ""},
		{"multiline prompt", "a lighthouse\nat dusk", "oil\tpainting", ""},
		{"empty prompt", "", "", "cannot be empty"},
		{"whitespace prompt", "   \n", "", "cannot be empty"},
		{"prompt too long", strings.Repeat("a", MaxPromptLength+1), "", "exceeds"},
		{"style too long", "cat", strings.Repeat("b", MaxStyleLength+1), "style exceeds"},
		{"control characters", "cat\x00dog", "", "control characters"},
		{"control characters in style", "cat", "noir\x1b", "style contains"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PromptFormat(tt.text, tt.style)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("PromptFormat() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("PromptFormat() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

// TestPromptFormat_UnicodeLength tests that limits count characters, not bytes
func TestPromptFormat_UnicodeLength(t *testing.T) {
	text := strings.Repeat("é", MaxPromptLength)
	if err := PromptFormat(text, ""); err != nil {
		t.Errorf("PromptFormat() with %d runes error = %v", MaxPromptLength, err)
	}
}
