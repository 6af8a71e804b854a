package config

import "testing"

// TestValidateAPIAddress tests accepted and rejected --api values
func TestValidateAPIAddress(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"127.0.0.1:8000", false},
		{"localhost:8000", false},
		{"lumen.internal:9000", false},
		{"0.0.0.0:8000", true},
		{"127.0.0.1", true},
		{"127.0.0.1:0", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			Global.APIAddr = tt.addr
			err := ValidateAPIAddress()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIAddress(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

// TestValidateOutputFormat tests the --output values
func TestValidateOutputFormat(t *testing.T) {
	for output, wantErr := range map[string]bool{"table": false, "json": false, "yaml": true} {
		Global.Output = output
		if err := ValidateOutputFormat(); (err != nil) != wantErr {
			t.Errorf("ValidateOutputFormat(%q) error = %v, wantErr %v", output, err, wantErr)
		}
	}
}

// TestValidateGenerateFlags tests prompt and count validation
func TestValidateGenerateFlags(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		count   int
		wantErr bool
	}{
		{"valid", "a red fox", 1, false},
		{"many", "a red fox", 16, false},
		{"empty prompt", "  ", 1, true},
		{"zero count", "a red fox", 0, true},
		{"huge count", "a red fox", 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Generate.Prompt = tt.prompt
			Generate.Count = tt.count
			Generate.Timeout = DefaultImageTimeout

			err := ValidateGenerateFlags()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGenerateFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
