// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     main
// Description: Entry point of the smartscript command
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package main

import (
	"os"

	"github.com/frle10/smartscript/cmd/smartscript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
