// ============================================================================
// lox - Lox Front End
// ============================================================================
//
// Package:     version
// Description: Central version management for the CLI and the services
// Author:      Mike Stoffels with Claude
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import "fmt"

// Version constants for all lox components
const (
	// Release version of the module
	Release = "0.1.0"

	// Component versions
	Scanner  = "0.1.0"
	Parser   = "0.1.0"
	Frontend = "0.1.0"
	Store    = "0.1.0"

	// Schema is the run history schema revision
	Schema = 1
)

// Set by the linker: -ldflags "-X github.com/msto63/lox/pkg/core/version.Commit=..."
var (
	Commit = "unknown"
	Date   = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "scanner":
		return Scanner
	case "parser":
		return Parser
	case "frontend":
		return Frontend
	case "store":
		return Store
	default:
		return Release
	}
}

// String returns the one-line version banner
func String() string {
	return fmt.Sprintf("lox %s (commit %s, built %s)", Release, Commit, Date)
}
