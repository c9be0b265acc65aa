// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to pick the log level for an error.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-12
//
// Change History:
// - 2026-10-12 v0.1.0: Initial severity levels

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow covers rejected input such as malformed documents
	SeverityLow Severity = iota

	// SeverityMedium covers failed executions of a valid document
	SeverityMedium

	// SeverityHigh covers faults of the runtime or its environment
	SeverityHigh
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}
