package config

import (
	"fmt"
	"net"

	"github.com/concave-dev/lumen/internal/logging"
	"github.com/concave-dev/lumen/internal/validate"
	"github.com/spf13/cobra"
)

// ValidateGlobalFlags validates all global flags before running any command
func ValidateGlobalFlags(cmd *cobra.Command, args []string) error {
	if err := ValidateAPIAddress(); err != nil {
		return err
	}

	if err := ValidateOutputFormat(); err != nil {
		return err
	}

	if err := logging.ValidateLogLevel(Global.LogLevel); err != nil {
		return err
	}

	if Global.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", Global.Timeout)
	}

	return nil
}

// ValidateAPIAddress validates the --api flag. Hostnames are allowed since
// the daemon often runs behind a service name.
func ValidateAPIAddress() error {
	if err := validate.ValidateDialAddress(Global.APIAddr, "API address"); err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address - expected format: host:port (e.g., 127.0.0.1:8000)")
	}

	host, port, _ := net.SplitHostPort(Global.APIAddr)

	// Reject unroutable 0.0.0.0 target for client connections
	if host == "0.0.0.0" {
		logging.Error("Unroutable API address '0.0.0.0:%s' - cannot connect to 0.0.0.0", port)
		return fmt.Errorf("unroutable API address - use 127.0.0.1 or a specific host")
	}

	if port == "0" {
		return fmt.Errorf("API port must be between 1-65535")
	}

	return nil
}

// ValidateOutputFormat validates the --output flag
func ValidateOutputFormat() error {
	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
	}
	if !validOutputs[Global.Output] {
		logging.Error("Invalid output format '%s' - valid formats are: table, json", Global.Output)
		return fmt.Errorf("invalid output format - valid: table, json")
	}
	return nil
}

// ValidateGenerateFlags validates the generate command flags
func ValidateGenerateFlags() error {
	if err := validate.PromptFormat(Generate.Prompt, Generate.Style); err != nil {
		return fmt.Errorf("invalid --prompt/--style: %w", err)
	}
	if err := validate.ValidateIntRange(Generate.Count, 1, 256, "--count"); err != nil {
		return err
	}
	if Generate.Timeout <= 0 {
		return fmt.Errorf("--image-timeout must be positive, got %d", Generate.Timeout)
	}
	return nil
}
