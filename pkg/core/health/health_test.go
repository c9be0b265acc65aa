package health

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frle10/smartscript/foundation/smartscript/ast"
	"github.com/frle10/smartscript/pkg/core/cache"
)

func TestNewChecker(t *testing.T) {
	checker := NewChecker("script-dir", func(ctx context.Context) CheckResult {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "test passed",
		}
	})

	if checker.Name() != "script-dir" {
		t.Errorf("Name() = %v, want script-dir", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Message != "test passed" {
		t.Errorf("Message = %v, want 'test passed'", result.Message)
	}
}

func TestRegistry_RegisterAndCheck(t *testing.T) {
	registry := NewRegistry("script-server", "0.2.0")

	registry.Register(AlwaysHealthy("engine"))
	registry.RegisterFunc("cache", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "Cache available"}
	})

	report := registry.Check(context.Background())

	if report.Service != "script-server" {
		t.Errorf("Service = %v, want script-server", report.Service)
	}
	if report.Version != "0.2.0" {
		t.Errorf("Version = %v, want 0.2.0", report.Version)
	}
	if report.Status != StatusHealthy || !report.Healthy() {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Errorf("Checks count = %v, want 2", len(report.Checks))
	}
	for _, c := range report.Checks {
		if c.Name == "" || c.Timestamp.IsZero() {
			t.Errorf("check result not filled in: %+v", c)
		}
	}
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry("script-server", "0.2.0")

	registry.RegisterFunc("temp", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	if got := len(registry.Check(context.Background()).Checks); got != 1 {
		t.Errorf("Before unregister: Checks count = %v, want 1", got)
	}

	registry.Unregister("temp")

	if got := len(registry.Check(context.Background()).Checks); got != 0 {
		t.Errorf("After unregister: Checks count = %v, want 0", got)
	}
}

func TestRegistry_OverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		expected Status
		healthy  bool
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy, true},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded, true},
		{"one unhealthy", []Status{StatusDegraded, StatusUnhealthy}, StatusUnhealthy, false},
		{"no checks", nil, StatusHealthy, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry("script-server", "0.2.0")
			for i, s := range tt.statuses {
				status := s
				registry.RegisterFunc(string(rune('a'+i)), func(ctx context.Context) CheckResult {
					return CheckResult{Status: status}
				})
			}

			report := registry.CheckWithTimeout(time.Second)

			if report.Status != tt.expected {
				t.Errorf("Status = %v, want %v", report.Status, tt.expected)
			}
			if report.Healthy() != tt.healthy {
				t.Errorf("Healthy() = %v, want %v", report.Healthy(), tt.healthy)
			}
		})
	}
}

func TestRegistry_ConcurrentChecks(t *testing.T) {
	registry := NewRegistry("script-server", "0.2.0")

	var counter int32

	for i := 0; i < 5; i++ {
		registry.RegisterFunc("check"+string(rune('A'+i)), func(ctx context.Context) CheckResult {
			atomic.AddInt32(&counter, 1)
			time.Sleep(10 * time.Millisecond) // Simulate work
			return CheckResult{Status: StatusHealthy}
		})
	}

	start := time.Now()
	report := registry.Check(context.Background())
	duration := time.Since(start)

	if atomic.LoadInt32(&counter) != 5 {
		t.Errorf("Counter = %v, want 5", counter)
	}

	// Checks run concurrently, so total time should be close to 10ms, not 50ms
	if duration > 100*time.Millisecond {
		t.Errorf("Duration = %v, expected concurrent execution", duration)
	}

	if len(report.Checks) != 5 {
		t.Errorf("Checks count = %v, want 5", len(report.Checks))
	}
}

func TestRegistry_Uptime(t *testing.T) {
	registry := NewRegistry("script-server", "0.2.0")

	time.Sleep(10 * time.Millisecond)

	report := registry.Check(context.Background())

	if report.Uptime < 10*time.Millisecond {
		t.Errorf("Uptime = %v, expected >= 10ms", report.Uptime)
	}
}

func TestReport_String(t *testing.T) {
	report := &Report{
		Service: "script-server",
		Status:  StatusHealthy,
		Uptime:  1 * time.Hour,
		Checks:  []CheckResult{{}, {}},
	}

	str := report.String()

	if !strings.Contains(str, "script-server") || !strings.Contains(str, "Checks: 2") {
		t.Errorf("String() = %v", str)
	}
}

func TestDirectoryCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.smscr")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		dir      string
		expected Status
	}{
		{"existing directory", dir, StatusHealthy},
		{"missing directory", filepath.Join(dir, "missing"), StatusUnhealthy},
		{"regular file", file, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DirectoryCheck("scripts", tt.dir).Check(context.Background())
			if result.Status != tt.expected {
				t.Errorf("Status = %v, want %v (%s)", result.Status, tt.expected, result.Message)
			}
			if result.Details["dir"] != tt.dir {
				t.Errorf("Details[dir] = %v, want %v", result.Details["dir"], tt.dir)
			}
		})
	}
}

func TestCacheCheck(t *testing.T) {
	c := cache.New(cache.Config{})
	defer c.Close()
	c.Set("a", "src", &ast.DocumentNode{})
	c.Get("a", "src")
	c.Get("b", "src")

	result := CacheCheck("document-cache", c).Check(context.Background())

	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Details["size"] != 1 {
		t.Errorf("size = %v, want 1", result.Details["size"])
	}
	if result.Details["hits"] != int64(1) || result.Details["misses"] != int64(1) {
		t.Errorf("hits/misses = %v/%v, want 1/1", result.Details["hits"], result.Details["misses"])
	}
}

func TestWatcherCheck(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		running  bool
		expected Status
	}{
		{"disabled", false, false, StatusHealthy},
		{"running", true, true, StatusHealthy},
		{"stopped", true, false, StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			running := tt.running
			result := WatcherCheck("watcher", tt.enabled, func() bool { return running }).Check(context.Background())
			if result.Status != tt.expected {
				t.Errorf("Status = %v, want %v", result.Status, tt.expected)
			}
		})
	}
}

func TestAlwaysHealthy(t *testing.T) {
	checker := AlwaysHealthy("always-healthy")

	if checker.Name() != "always-healthy" {
		t.Errorf("Name() = %v, want always-healthy", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
}
