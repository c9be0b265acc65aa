// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     store
// Description: Persistent script parameters shared between server requests
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ParamBackend defines the interface for persistent parameter storage
type ParamBackend interface {
	// LoadAll returns every stored parameter
	LoadAll(ctx context.Context) (map[string]string, error)

	// Apply stores set and removes deleted in one step
	Apply(ctx context.Context, set map[string]string, deleted []string) error

	Close() error
}

// Params is the process-wide persistent parameter map. Requests work on a
// Snapshot and hand the result back to Merge, which applies only the keys
// the request changed.
type Params struct {
	mu      sync.RWMutex
	values  map[string]string
	backend ParamBackend
}

// Open loads the backend contents into a new Params. A nil backend keeps
// the parameters in memory only.
func Open(ctx context.Context, backend ParamBackend) (*Params, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	values, err := backend.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load persistent parameters: %w", err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return &Params{values: values, backend: backend}, nil
}

// Snapshot returns a copy the caller may modify freely
func (p *Params) Snapshot() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Get returns a single parameter
func (p *Params) Get(name string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[name]
	return v, ok
}

// Len returns the number of stored parameters
func (p *Params) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.values)
}

// Merge applies the difference between before and after to the shared map
// and persists it. Keys untouched by the request keep their current value.
func (p *Params) Merge(ctx context.Context, before, after map[string]string) error {
	set, deleted := Diff(before, after)
	if len(set) == 0 && len(deleted) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.backend.Apply(ctx, set, deleted); err != nil {
		return fmt.Errorf("failed to persist parameters: %w", err)
	}
	for k, v := range set {
		p.values[k] = v
	}
	for _, k := range deleted {
		delete(p.values, k)
	}
	return nil
}

// Close closes the backend
func (p *Params) Close() error {
	return p.backend.Close()
}

// Diff reports the keys whose value changed or appeared in after, and the
// keys of before missing from after. deleted is sorted.
func Diff(before, after map[string]string) (set map[string]string, deleted []string) {
	set = make(map[string]string)
	for k, v := range after {
		if old, ok := before[k]; !ok || old != v {
			set[k] = v
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			deleted = append(deleted, k)
		}
	}
	sort.Strings(deleted)
	return set, deleted
}

// MemoryBackend keeps nothing beyond the process lifetime
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend creates a new in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

// LoadAll implements ParamBackend
func (m *MemoryBackend) LoadAll(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

// Apply implements ParamBackend
func (m *MemoryBackend) Apply(ctx context.Context, set map[string]string, deleted []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range set {
		m.values[k] = v
	}
	for _, k := range deleted {
		delete(m.values, k)
	}
	return nil
}

// Close implements ParamBackend
func (m *MemoryBackend) Close() error {
	return nil
}

// NewBackend creates the backend named by driver ("memory" or "sqlite")
func NewBackend(driver, path string) (ParamBackend, error) {
	switch driver {
	case "", "memory":
		return NewMemoryBackend(), nil
	case "sqlite":
		b, err := NewSQLiteBackend(SQLiteConfig{Path: path})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown parameter store driver %q", driver)
	}
}
