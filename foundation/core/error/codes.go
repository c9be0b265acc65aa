// File: codes.go
// Title: Error Code Definitions
// Description: Error codes used at the SmartScript API boundary so that
//              callers (server, CLI) can map failures without inspecting
//              messages.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-12
//
// Change History:
// - 2026-10-12 v0.1.0: Script error codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"

	// SmartScript pipeline
	CodeScriptInput     Code = "SCRIPT_INPUT"
	CodeScriptLex       Code = "SCRIPT_LEX"
	CodeScriptParse     Code = "SCRIPT_PARSE"
	CodeScriptExecution Code = "SCRIPT_EXECUTION"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsClientError reports whether the code describes bad caller input
// rather than a fault of the runtime.
func (c Code) IsClientError() bool {
	switch c {
	case CodeNotFound, CodeInvalidInput, CodeScriptInput, CodeScriptLex, CodeScriptParse:
		return true
	default:
		return false
	}
}
