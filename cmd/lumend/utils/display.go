// Package utils contains utility functions for the Lumen daemon.
package utils

import (
	"fmt"
)

// DisplayLogo prints the Lumen ASCII logo with version information
func DisplayLogo(version string) {
	fmt.Println()
	fmt.Println(` ░░░░░░░░░░░░░░░░░░░░░░░
 ░█░░░█░█░█▄█░█▀▀░█▀█░░░
 ░█░░░█░█░█░█░█▀▀░█░█░░░
 ░▀▀▀░▀▀▀░▀░▀░▀▀▀░▀░▀░░░
 ░░░░░░░░░░░░░░░░░░░░░░░`)
	fmt.Printf("\n Lumen v%s - Batched Image Generation\n", version)
	fmt.Println()
}
