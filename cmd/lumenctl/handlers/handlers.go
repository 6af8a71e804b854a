// Package handlers implements the RunE functions behind lumenctl commands.
// Each handler sets up logging, calls the daemon through the client
// package and hands the result to the display package.
package handlers

import (
	"fmt"

	"github.com/concave-dev/lumen/cmd/lumenctl/client"
	"github.com/concave-dev/lumen/cmd/lumenctl/config"
)

// wrapConnectError adds a startup hint when no daemon is listening.
func wrapConnectError(err error) error {
	if client.IsConnectionRefusedError(err) {
		return fmt.Errorf("%w\nIs lumend running at %s? Start it with 'lumend' or pass --api", err, config.Global.APIAddr)
	}
	return err
}
