// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     server
// Description: Periodic stats log line driven by a gocron scheduler
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package server

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	sslog "github.com/frle10/smartscript/foundation/core/log"
)

// StatsReporter logs request counters, cache statistics and the number of
// persistent parameters at a fixed interval
type StatsReporter struct {
	server    *Server
	scheduler gocron.Scheduler
}

// StartStatsReporter schedules Report every interval. The caller stops it
// with Stop.
func (s *Server) StartStatsReporter(interval time.Duration) (*StatsReporter, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid stats interval %v", interval)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	r := &StatsReporter{server: s, scheduler: scheduler}
	if _, err := scheduler.NewJob(gocron.DurationJob(interval), gocron.NewTask(r.Report)); err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule stats job: %w", err)
	}
	scheduler.Start()

	s.logger.Debug("Stats reporter started", sslog.Fields{"interval": interval.String()})
	return r, nil
}

// Report writes one stats line
func (r *StatsReporter) Report() {
	s := r.server
	cs := s.loader.Cache().Stats()

	fields := sslog.Fields{
		"requests":         requestsTotal.Value(),
		"ok":               okResponses.Value(),
		"not_found":        notFoundResponses.Value(),
		"errors":           errorResponses.Value(),
		"body_bytes":       responseBodyBytes.Value(),
		"cache_size":       cs.Size,
		"cache_hits":       cs.Hits,
		"cache_misses":     cs.Misses,
		"cache_evictions":  cs.Evictions,
		"cache_hit_rate":   cs.HitRate,
		"persistent_count": 0,
	}
	if s.params != nil {
		fields["persistent_count"] = s.params.Len()
	}
	s.logger.Info("Server stats", fields)
}

// Stop shuts the scheduler down, waiting for a running report
func (r *StatsReporter) Stop() error {
	return r.scheduler.Shutdown()
}
