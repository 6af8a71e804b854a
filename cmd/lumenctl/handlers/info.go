package handlers

import (
	"github.com/concave-dev/lumen/cmd/lumenctl/client"
	"github.com/concave-dev/lumen/cmd/lumenctl/display"
	"github.com/concave-dev/lumen/cmd/lumenctl/utils"
	"github.com/concave-dev/lumen/internal/logging"
	"github.com/spf13/cobra"
)

// HandleHealth handles the health command
func HandleHealth(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Fetching daemon health from API server")

	health, err := client.CreateAPIClient().GetHealth()
	if err != nil {
		return wrapConnectError(err)
	}

	display.DisplayHealth(health)
	return nil
}

// HandleStats handles the stats command
func HandleStats(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Fetching batching stats from API server")

	stats, err := client.CreateAPIClient().GetStats()
	if err != nil {
		return wrapConnectError(err)
	}

	display.DisplayStats(stats)
	return nil
}
