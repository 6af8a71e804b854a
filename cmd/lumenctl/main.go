// Package main provides the entry point for the Lumen CLI tool (lumenctl).
package main

import (
	"os"

	"github.com/concave-dev/lumen/cmd/lumenctl/commands"
	"github.com/concave-dev/lumen/cmd/lumenctl/config"
	"github.com/concave-dev/lumen/cmd/lumenctl/handlers"
)

func init() {
	rootCmd := commands.RootCmd

	// Set version and validation
	rootCmd.Version = config.Version
	rootCmd.PersistentPreRunE = config.ValidateGlobalFlags

	commands.SetupCommands()

	commands.SetupGlobalFlags(rootCmd, &config.Global.APIAddr, &config.Global.LogLevel,
		&config.Global.Timeout, &config.Global.Verbose, &config.Global.Output, config.DefaultAPIAddr)

	generateCmd, removeBgCmd := commands.GetImageCommands()
	commands.SetupImageFlags(generateCmd, removeBgCmd)

	setupCommandHandlers()
}

// setupCommandHandlers assigns RunE functions to commands
func setupCommandHandlers() {
	generateCmd, removeBgCmd := commands.GetImageCommands()
	healthCmd, statsCmd := commands.GetInfoCommands()

	generateCmd.RunE = handlers.HandleGenerate
	removeBgCmd.RunE = handlers.HandleRemoveBackground
	healthCmd.RunE = handlers.HandleHealth
	statsCmd.RunE = handlers.HandleStats
}

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
