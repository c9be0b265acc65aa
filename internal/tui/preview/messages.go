// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     preview
// Description: Message types for async rendering in the live preview
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package preview

import "time"

// Result is one render of the editor content
type Result struct {
	Output   string
	Tree     string
	Source   string
	Err      error
	Duration time.Duration
}

// renderTickMsg fires after the typing pause; stale versions are ignored
type renderTickMsg struct {
	version int
}

// renderedMsg carries a finished render
type renderedMsg struct {
	version int
	result  Result
}

// savedMsg is sent after ctrl+s wrote the file
type savedMsg struct {
	path string
	err  error
}
