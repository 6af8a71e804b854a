// Package commands provides the CLI command structure for the Lumen daemon.
//
// lumend is a single root command. Flags are bound into config.Global, the
// optional config file and environment overrides are layered underneath, and
// the validated configuration is handed to daemon.Run.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/concave-dev/lumen/cmd/lumend/config"
	"github.com/concave-dev/lumen/cmd/lumend/daemon"
	"github.com/concave-dev/lumen/cmd/lumend/utils"
	"github.com/concave-dev/lumen/internal/logging"
	"github.com/concave-dev/lumen/internal/version"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotating log file, nil when logging to the terminal
var logFile *lumberjack.Logger

// CleanupLogFile closes the rotating log file if one is open
func CleanupLogFile() {
	if logFile != nil {
		if err := logFile.Close(); err != nil {
			// The logger itself may be the thing failing
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
		logFile = nil
	}
}

// setupLogFile redirects logging into a size-rotated file
func setupLogFile() error {
	logDir := filepath.Dir(config.Global.LogFile)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	logFile = &lumberjack.Logger{
		Filename:   config.Global.LogFile,
		MaxSize:    config.Global.LogMaxSize,
		MaxBackups: config.Global.LogMaxBackups,
	}

	logging.SetOutput(logFile)
	logging.RedirectStandardLog(logging.NewLevelWriter("INFO", "stdlib"))
	return nil
}

// Root command for the Lumen daemon
var RootCmd = &cobra.Command{
	Use:   "lumend",
	Short: "Batched image generation service",
	Long: `Lumen daemon (lumend) serves text-to-image generation and background removal over HTTP.

Concurrent generation requests are grouped into batches of up to --max-batch-size
prompts and sent to one backend call, then each caller receives its own image.`,
	Version:      version.LumendVersion,
	SilenceUsage: true, // Don't show usage on errors
	Example: `  # Run with the built-in placeholder renderer on the default port
  lumend

  # Forward batches to an inference worker and cache results in Redis
  lumend --backend=http --backend-url=http://gpu-01:9000 --redis=127.0.0.1:6379

  # Load settings from a config file, overriding the batch size
  lumend --config=/etc/lumen/config.json --max-batch-size=8

  # Rate limit generation to 2 requests/second per client and log to a file
  lumend --rate-limit=2 --rate-burst=5 --log-file=/var/log/lumen/lumend.log`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Display logo first, before any validation or logging
		utils.DisplayLogo(version.LumendVersion)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		CheckExplicitFlags(cmd)

		// Apply the flag level early so config loading honors --log-level
		logging.SetLevel(config.Global.LogLevel)

		if err := config.LoadConfigFile(); err != nil {
			return err
		}
		config.InitializeConfig()
		if err := config.ValidateConfig(); err != nil {
			return err
		}

		// Re-apply in case the config file or DEBUG changed the level
		logging.SetLevel(config.Global.LogLevel)

		if config.Global.LogFile != "" {
			if err := setupLogFile(); err != nil {
				return err
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer CleanupLogFile()
		return daemon.Run()
	},
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	SetupFlags(RootCmd)
}
