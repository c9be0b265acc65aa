package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name        string
		before      map[string]string
		after       map[string]string
		wantSet     map[string]string
		wantDeleted []string
	}{
		{"no change", map[string]string{"a": "1"}, map[string]string{"a": "1"}, map[string]string{}, nil},
		{"added", nil, map[string]string{"a": "1"}, map[string]string{"a": "1"}, nil},
		{"changed", map[string]string{"a": "1"}, map[string]string{"a": "2"}, map[string]string{"a": "2"}, nil},
		{"deleted", map[string]string{"b": "1", "a": "1"}, map[string]string{}, map[string]string{}, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, deleted := Diff(tt.before, tt.after)
			if !reflect.DeepEqual(set, tt.wantSet) {
				t.Errorf("set = %v, want %v", set, tt.wantSet)
			}
			if !reflect.DeepEqual(deleted, tt.wantDeleted) {
				t.Errorf("deleted = %v, want %v", deleted, tt.wantDeleted)
			}
		})
	}
}

func TestParams_SnapshotIsCopy(t *testing.T) {
	p, err := Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	snap := p.Snapshot()
	snap["x"] = "1"

	if _, ok := p.Get("x"); ok {
		t.Error("modifying a snapshot changed the shared map")
	}
}

func TestParams_MergeOnlyChangedKeys(t *testing.T) {
	ctx := context.Background()
	p, _ := Open(ctx, nil)

	// two requests start from the same snapshot
	first := p.Snapshot()
	second := p.Snapshot()
	beforeFirst, beforeSecond := p.Snapshot(), p.Snapshot()

	first["counter"] = "1"
	second["user"] = "ana"

	if err := p.Merge(ctx, beforeFirst, first); err != nil {
		t.Fatal(err)
	}
	if err := p.Merge(ctx, beforeSecond, second); err != nil {
		t.Fatal(err)
	}

	if v, _ := p.Get("counter"); v != "1" {
		t.Errorf("counter = %q, want 1", v)
	}
	if v, _ := p.Get("user"); v != "ana" {
		t.Errorf("user = %q, want ana", v)
	}
}

func TestParams_MergeDelete(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	backend.Apply(ctx, map[string]string{"a": "1", "b": "2"}, nil)

	p, err := Open(ctx, backend)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}

	before := p.Snapshot()
	after := p.Snapshot()
	delete(after, "a")

	if err := p.Merge(ctx, before, after); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Get("a"); ok {
		t.Error("a should be deleted")
	}
	stored, _ := backend.LoadAll(ctx)
	if !reflect.DeepEqual(stored, map[string]string{"b": "2"}) {
		t.Errorf("backend = %v", stored)
	}
}

type failingBackend struct{ *MemoryBackend }

func (f *failingBackend) Apply(context.Context, map[string]string, []string) error {
	return errors.New("disk full")
}

func TestParams_MergeBackendFailureKeepsMap(t *testing.T) {
	ctx := context.Background()
	p, _ := Open(ctx, &failingBackend{NewMemoryBackend()})

	err := p.Merge(ctx, map[string]string{}, map[string]string{"a": "1"})
	if err == nil {
		t.Fatal("Merge() expected error")
	}
	if _, ok := p.Get("a"); ok {
		t.Error("failed merge must not change the shared map")
	}
}

func TestParams_ConcurrentMerge(t *testing.T) {
	ctx := context.Background()
	p, _ := Open(ctx, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			before := p.Snapshot()
			after := p.Snapshot()
			after[fmt.Sprintf("k%d", i)] = "v"
			if err := p.Merge(ctx, before, after); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	if p.Len() != 20 {
		t.Errorf("Len() = %d, want 20", p.Len())
	}
}

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "params.db")

	backend, err := NewSQLiteBackend(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("NewSQLiteBackend() error = %v", err)
	}

	if err := backend.Apply(ctx, map[string]string{"a": "1", "b": "2"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := backend.Apply(ctx, map[string]string{"a": "3"}, []string{"b"}); err != nil {
		t.Fatal(err)
	}
	backend.Close()

	// reopen to check the values survived
	backend, err = NewSQLiteBackend(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()

	p, err := Open(ctx, backend)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.Snapshot(), map[string]string{"a": "3"}) {
		t.Errorf("Snapshot() = %v, want map[a:3]", p.Snapshot())
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		driver  string
		wantErr bool
	}{
		{"", false},
		{"memory", false},
		{"sqlite", false},
		{"redis", true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			b, err := NewBackend(tt.driver, filepath.Join(t.TempDir(), "p.db"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewBackend(%q) error = %v, wantErr %v", tt.driver, err, tt.wantErr)
			}
			if b != nil {
				b.Close()
			}
		})
	}
}
