package scripts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	sserror "github.com/frle10/smartscript/foundation/core/error"
	"github.com/frle10/smartscript/foundation/smartscript"
	"github.com/frle10/smartscript/pkg/core/cache"
)

func newTestLoader(t *testing.T) (*Loader, string) {
	t.Helper()
	dir := t.TempDir()
	engine, err := smartscript.NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	c := cache.New(cache.Config{MaxItems: 16})
	t.Cleanup(c.Close)
	return NewLoader(Config{Dir: dir, Debounce: time.Millisecond}, engine, c, nil), dir
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoader_Resolve(t *testing.T) {
	l, dir := newTestLoader(t)
	root, _ := filepath.Abs(dir)

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", filepath.Join(root, "index.smscr"), false},
		{"/", filepath.Join(root, "index.smscr"), false},
		{"hello", filepath.Join(root, "hello.smscr"), false},
		{"/blog/post", filepath.Join(root, "blog", "post.smscr"), false},
		{"page.txt", filepath.Join(root, "page.txt"), false},
		{"../secret", "", true},
		{"a/../../b", "", true},
		{".hidden", "", true},
		{"a//b", "", true},
		{`a\b`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Resolve(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Errorf("Resolve(%q) error = %v, want ErrInvalidName", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestLoader_LoadCaches(t *testing.T) {
	l, dir := newTestLoader(t)
	writeScript(t, dir, "hello.smscr", "Hello {$= name $}!")

	first, err := l.Load("hello")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if first.Cached {
		t.Error("first load reported a cache hit")
	}

	second, err := l.Load("hello")
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached || second.Document != first.Document {
		t.Error("second load should reuse the cached document")
	}
}

func TestLoader_LoadReparsesChangedFile(t *testing.T) {
	l, dir := newTestLoader(t)
	writeScript(t, dir, "page.smscr", "one")

	first, _ := l.Load("page")
	writeScript(t, dir, "page.smscr", "two")
	second, err := l.Load("page")
	if err != nil {
		t.Fatal(err)
	}
	if second.Cached || second.Document == first.Document {
		t.Error("changed content must be parsed again")
	}
}

func TestLoader_LoadErrors(t *testing.T) {
	l, dir := newTestLoader(t)
	writeScript(t, dir, "broken.smscr", "{$ FOR i 1 $}")
	if err := os.Mkdir(filepath.Join(dir, "folder.smscr"), 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := l.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: error = %v, want ErrNotFound", err)
	}
	if _, err := l.Load("folder"); !errors.Is(err, ErrNotFound) {
		t.Errorf("directory: error = %v, want ErrNotFound", err)
	}
	if _, err := l.Load("../etc/passwd"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("traversal: error = %v, want ErrInvalidName", err)
	}

	_, err := l.Load("broken")
	if !sserror.HasCode(err, sserror.CodeScriptParse) {
		t.Errorf("broken: code = %v, want SCRIPT_PARSE", sserror.GetCode(err))
	}
	if l.Cache().Size() != 0 {
		t.Error("parse failure must not be cached")
	}
}

func TestLoader_List(t *testing.T) {
	l, dir := newTestLoader(t)
	writeScript(t, dir, "index.smscr", "")
	writeScript(t, dir, "blog/post.smscr", "")
	writeScript(t, dir, "notes.txt", "")
	writeScript(t, dir, ".git/x.smscr", "")

	names, err := l.List()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"blog/post", "index"}; !reflect.DeepEqual(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}
}

func TestLoader_WatchInvalidates(t *testing.T) {
	l, dir := newTestLoader(t)
	writeScript(t, dir, "live.smscr", "v1")

	changed := make(chan string, 8)
	l.SetOnChange(func(path string) { changed <- path })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := l.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer l.Stop()

	if !l.Watching() {
		t.Fatal("Watching() = false after StartWatching")
	}
	if _, err := l.Load("live"); err != nil {
		t.Fatal(err)
	}

	path := writeScript(t, dir, "live.smscr", "v2")
	want, _ := filepath.Abs(path)

	select {
	case got := <-changed:
		if got != want {
			t.Errorf("changed path = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change event received")
	}

	if l.Cache().Size() != 0 {
		t.Error("cached document should have been dropped")
	}
}

func TestLoader_StopTwice(t *testing.T) {
	l, _ := newTestLoader(t)
	if err := l.StartWatching(context.Background()); err != nil {
		t.Fatal(err)
	}
	l.Stop()
	l.Stop()
}
