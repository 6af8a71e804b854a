// Package main implements the Lumen daemon (lumend).
//
// lumend serves image generation over HTTP. Concurrent generation requests
// are grouped into batches and sent to a single generation backend, either
// the built-in placeholder renderer or a remote inference worker.
package main

import (
	"os"

	"github.com/concave-dev/lumen/cmd/lumend/commands"
)

func main() {
	commands.SetupCommands()

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
