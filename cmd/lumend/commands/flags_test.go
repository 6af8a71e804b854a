package commands

import (
	"testing"

	"github.com/concave-dev/lumen/cmd/lumend/config"
	"github.com/spf13/cobra"
)

// TestCheckExplicitFlags tests that only flags given on the command line are marked explicit
func TestCheckExplicitFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "lumend", RunE: func(*cobra.Command, []string) error { return nil }}
	SetupFlags(cmd)
	defer func() { config.Global = config.Config{MaxPorts: config.DefaultMaxPorts} }()

	if err := cmd.ParseFlags([]string{"--max-batch-size=8", "--redis=127.0.0.1:6379"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	CheckExplicitFlags(cmd)

	if !config.Global.IsExplicitlySet(config.MaxBatchSizeField) {
		t.Error("max-batch-size should be explicit")
	}
	if !config.Global.IsExplicitlySet(config.RedisAddrField) {
		t.Error("redis should be explicit")
	}
	if config.Global.IsExplicitlySet(config.APIAddrField) {
		t.Error("api should not be explicit")
	}
	if config.Global.MaxBatchSize != 8 {
		t.Errorf("MaxBatchSize = %d, want 8", config.Global.MaxBatchSize)
	}
	if config.Global.APIAddr != config.DefaultAPI {
		t.Errorf("APIAddr = %q, want default %q", config.Global.APIAddr, config.DefaultAPI)
	}
}

// TestFlagFields tests that every tracked flag is registered
func TestFlagFields(t *testing.T) {
	cmd := &cobra.Command{Use: "lumend"}
	SetupFlags(cmd)

	for name := range flagFields {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s is tracked but not registered", name)
		}
	}
}
