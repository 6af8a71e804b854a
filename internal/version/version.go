// Package version provides centralized version information for the Lumen
// daemon and CLI. Both binaries are versioned independently and follow
// semantic versioning (semver) conventions.
package version

// LumendVersion holds the current lumend daemon version.
// Format: major.minor.patch[-prerelease][+build]
const LumendVersion = "0.1.0-dev"

// LumenctlVersion holds the current lumenctl CLI version.
// Format: major.minor.patch[-prerelease][+build]
const LumenctlVersion = "0.1.0-dev"
