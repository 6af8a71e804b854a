// Package commands defines the lumenctl command tree.
//
// Commands:
//   - generate: request one or more images for a prompt
//   - remove-bg: strip the background from a local image
//   - health: daemon health and host resources
//   - stats: batching counters and cache hit rate
package commands

import (
	"github.com/spf13/cobra"
)

// Root command
var RootCmd = &cobra.Command{
	Use:   "lumenctl",
	Short: "CLI tool for the Lumen image generation service",
	Long: `Lumen CLI (lumenctl) talks to a running lumend daemon.

It sends prompts for image generation, uploads images for background
removal, and shows daemon health and batching statistics.`,
	SilenceUsage: true,
	Example: `  # Generate one image
  lumenctl generate --prompt "a lighthouse at dusk" --out lighthouse.jpg

  # Generate eight images at once so they share a batch
  lumenctl generate --prompt "a red fox" --style watercolor --count 8 --out fox.jpg

  # Remove the background from a photo
  lumenctl remove-bg --in photo.png --out photo-clean.jpg

  # Show daemon health and batching stats
  lumenctl health
  lumenctl -o json stats

  # Connect to a remote daemon
  lumenctl --api=10.0.0.5:8000 health`,
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(removeBgCmd)
	RootCmd.AddCommand(healthCmd)
	RootCmd.AddCommand(statsCmd)
}

// SetupGlobalFlags configures all global persistent flags
func SetupGlobalFlags(rootCmd *cobra.Command, apiAddrPtr *string, logLevelPtr *string,
	timeoutPtr *int, verbosePtr *bool, outputPtr *string, defaultAPIAddr string) {
	rootCmd.PersistentFlags().StringVar(apiAddrPtr, "api", defaultAPIAddr,
		"lumend API server address")
	rootCmd.PersistentFlags().StringVar(logLevelPtr, "log-level", "ERROR",
		"Log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().IntVar(timeoutPtr, "timeout", 8,
		"Connection timeout in seconds for status commands")
	rootCmd.PersistentFlags().BoolVarP(verbosePtr, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVarP(outputPtr, "output", "o", "table",
		"Output format: table, json")
}
