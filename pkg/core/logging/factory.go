// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers from config strings
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	sslog "github.com/frle10/smartscript/foundation/core/log"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Component name (smartscript, server, cli)
	Name string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: "json", "text" or "console" (default: json)
	Format string

	// Output writer (default: stderr)
	Output io.Writer

	// Additional outputs, e.g. a log file next to the server
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(name string) LoggerConfig {
	return LoggerConfig{
		Name:   name,
		Level:  "info",
		Format: "json",
	}
}

// NewLogger creates a new Foundation logger. Unknown level or format strings
// fall back to info and json; config validation reports them earlier.
func NewLogger(cfg LoggerConfig) *sslog.Logger {
	level, err := sslog.ParseLevel(cfg.Level)
	if err != nil {
		level = sslog.LevelInfo
	}

	format, err := sslog.ParseFormat(cfg.Format)
	if err != nil {
		format = sslog.FormatJSON
	}

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return sslog.NewWithConfig(sslog.Config{
		Level:  level,
		Format: format,
		Output: output,
		Name:   cfg.Name,
	})
}

// NewComponentLogger creates a logger for a component with standard configuration
func NewComponentLogger(name string) *sslog.Logger {
	return NewLogger(DefaultLoggerConfig(name))
}

// NewCLILogger creates a console logger for interactive commands. Verbose
// switches the level to debug.
func NewCLILogger(name string, verbose bool) *sslog.Logger {
	cfg := LoggerConfig{Name: name, Level: "warn", Format: "console"}
	if verbose {
		cfg.Level = "debug"
	}
	return NewLogger(cfg)
}
