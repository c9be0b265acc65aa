// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     version
// Description: Central version management for the engine, server and CLI
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package version

import "fmt"

// Version constants for all SmartScript components
const (
	// Release version of the repository
	Platform = "0.3.0"

	// Component versions
	Engine = "0.3.0"
	Server = "0.2.0"
	CLI    = "0.3.0"

	// Language is the template language revision understood by the parser
	Language = "1.0.0"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "engine":
		return Engine
	case "server":
		return Server
	case "cli":
		return CLI
	case "language":
		return Language
	default:
		return Platform
	}
}

// String renders the banner printed by "smartscript version"
func String() string {
	return fmt.Sprintf("smartscript %s (engine %s, server %s, language %s)", Platform, Engine, Server, Language)
}
