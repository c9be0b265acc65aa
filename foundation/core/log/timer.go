// File: timer.go
// Title: Performance Timer
// Description: Measures an operation and logs its duration together with
//              named checkpoints when stopped.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-12
// Modified: 2026-10-12
//
// Change History:
// - 2026-10-12 v0.1.0: Initial timer

package log

import (
	"time"
)

// Timer represents a performance timer for measuring operation duration
type Timer struct {
	logger      *Logger
	operation   string
	startTime   time.Time
	fields      Fields
	checkpoints []checkpoint
	level       Level
	stopped     bool
}

type checkpoint struct {
	name    string
	elapsed time.Duration
}

// NewTimer creates a new timer for the given operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		startTime: time.Now(),
		fields:    make(Fields),
		level:     LevelDebug,
	}
}

// WithField adds a field to be logged when the timer completes
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// StartTime returns when the timer was started
func (t *Timer) StartTime() time.Time {
	return t.startTime
}

// Elapsed returns the elapsed time since the timer was started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Checkpoint records an intermediate step
func (t *Timer) Checkpoint(name string) {
	t.checkpoints = append(t.checkpoints, checkpoint{name: name, elapsed: t.Elapsed()})
}

// Stop stops the timer and logs the elapsed time
func (t *Timer) Stop() time.Duration {
	return t.finish(nil)
}

// StopWithError stops the timer and logs the elapsed time with the failure
func (t *Timer) StopWithError(err error) time.Duration {
	return t.finish(err)
}

func (t *Timer) finish(err error) time.Duration {
	if t.stopped {
		return 0
	}
	t.stopped = true
	elapsed := t.Elapsed()

	fields := t.fields.Merge(Fields{"operation": t.operation})
	for _, cp := range t.checkpoints {
		fields["checkpoint_"+cp.name+"_ms"] = float64(cp.elapsed.Nanoseconds()) / 1e6
	}

	level := t.level
	message := "Operation completed"
	if err != nil {
		level = LevelWarn
		message = "Operation failed"
	}
	t.logger.write(level, message, err, elapsed, fields)
	return elapsed
}
