package commands

import "github.com/spf13/cobra"

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show daemon health and host resources",
	Args:  cobra.NoArgs,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show batching counters and cache hit rate",
	Args:  cobra.NoArgs,
}

// GetInfoCommands returns the health and stats command references
func GetInfoCommands() (*cobra.Command, *cobra.Command) {
	return healthCmd, statsCmd
}
