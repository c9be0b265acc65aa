// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     scripts
// Description: Script directory loader with cached parsing and hot-reload
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package scripts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	sslog "github.com/frle10/smartscript/foundation/core/log"
	"github.com/frle10/smartscript/foundation/smartscript"
	"github.com/frle10/smartscript/foundation/smartscript/ast"
	"github.com/frle10/smartscript/pkg/core/cache"
	"github.com/tevino/abool/v2"
)

var (
	// ErrNotFound is returned when no script file exists for a name
	ErrNotFound = errors.New("script not found")

	// ErrInvalidName is returned for names escaping the script directory
	ErrInvalidName = errors.New("invalid script name")
)

// Config holds loader configuration
type Config struct {
	Dir         string
	Extension   string        // appended when the name has none, default .smscr
	IndexScript string        // served for the empty name, default index
	Debounce    time.Duration // minimum gap between two events for one file
}

// Script is a loaded and parsed script
type Script struct {
	Name     string
	Path     string
	Document *ast.DocumentNode
	Cached   bool
	ModTime  time.Time
}

// Loader resolves script names inside a directory and parses them through
// the document cache
type Loader struct {
	cfg      Config
	engine   *smartscript.Engine
	cache    *cache.Cache
	logger   *sslog.Logger
	watcher  *fsnotify.Watcher
	onChange func(path string) // Callback when a script changes or disappears
	stopCh   chan struct{}
	running  *abool.AtomicBool
	stopped  *abool.AtomicBool
}

// NewLoader creates a new script loader
func NewLoader(cfg Config, engine *smartscript.Engine, c *cache.Cache, logger *sslog.Logger) *Loader {
	if cfg.Extension == "" {
		cfg.Extension = ".smscr"
	}
	if cfg.IndexScript == "" {
		cfg.IndexScript = "index"
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 100 * time.Millisecond
	}
	if c == nil {
		c = cache.New(cache.Config{})
	}
	if logger == nil {
		logger = sslog.NewNop()
	}
	return &Loader{
		cfg:     cfg,
		engine:  engine,
		cache:   c,
		logger:  logger.WithField("component", "script-loader"),
		stopCh:  make(chan struct{}),
		running: abool.New(),
		stopped: abool.New(),
	}
}

// SetOnChange sets the callback invoked after a script file event
func (l *Loader) SetOnChange(fn func(path string)) {
	l.onChange = fn
}

// Cache returns the document cache
func (l *Loader) Cache() *cache.Cache {
	return l.cache
}

// Resolve maps a request name like "blog/post" to a file path inside the
// script directory
func (l *Loader) Resolve(name string) (string, error) {
	name = strings.Trim(name, "/")
	if name == "" {
		name = l.cfg.IndexScript
	}
	if strings.ContainsRune(name, '\\') || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == "" || strings.HasPrefix(segment, ".") {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	if filepath.Ext(name) == "" {
		name += l.cfg.Extension
	}

	root, err := filepath.Abs(l.cfg.Dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(root, filepath.FromSlash(name))
	if rel, err := filepath.Rel(root, path); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return path, nil
}

// Load reads and parses the named script. Parsed documents are reused
// while the file content is unchanged.
func (l *Loader) Load(name string) (*Script, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read script %s: %w", name, err)
	}

	doc, cached, err := l.cache.GetOrParse(path, string(data), l.engine.Parse)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("Script loaded", sslog.Fields{"script": name, "cached": cached})
	return &Script{
		Name:     name,
		Path:     path,
		Document: doc,
		Cached:   cached,
		ModTime:  info.ModTime(),
	}, nil
}

// List returns all script names below the directory, without extension
func (l *Loader) List() ([]string, error) {
	root := l.cfg.Dir
	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != l.cfg.Extension {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), l.cfg.Extension))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// StartWatching starts the file watcher that drops cached documents as
// soon as their file changes
func (l *Loader) StartWatching(ctx context.Context) error {
	if !l.running.SetToIf(false, true) {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		l.running.UnSet()
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// fsnotify is not recursive, every directory is added on its own
	err = filepath.WalkDir(l.cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		l.running.UnSet()
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	l.watcher = watcher
	l.logger.Info("Started watching for script changes", sslog.Fields{"dir": l.cfg.Dir})

	go l.watchLoop(ctx)
	return nil
}

// Stop stops the watcher. A stopped loader cannot watch again.
func (l *Loader) Stop() {
	if l.stopped.SetToIf(false, true) {
		close(l.stopCh)
	}
}

// Watching reports whether the watcher is running
func (l *Loader) Watching() bool {
	return l.running.IsSet()
}

// watchLoop handles file system events
func (l *Loader) watchLoop(ctx context.Context) {
	defer func() {
		l.watcher.Close()
		l.running.UnSet()
	}()

	// Debounce map to prevent repeated invalidation for one save
	debounce := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping script watcher (context cancelled)")
			return

		case <-l.stopCh:
			l.logger.Info("Stopping script watcher (stop signal)")
			return

		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}

			if lastTime, exists := debounce[event.Name]; exists && time.Since(lastTime) < l.cfg.Debounce {
				continue
			}
			debounce[event.Name] = time.Now()

			l.handleFileEvent(event)

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.ErrorWithErr("Watcher error", err)
		}
	}
}

// handleFileEvent processes a single file event
func (l *Loader) handleFileEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := l.watcher.Add(event.Name); err != nil {
				l.logger.WarnWithErr("Failed to watch new directory", err, sslog.Fields{"dir": event.Name})
			}
			return
		}
	}

	if filepath.Ext(event.Name) != l.cfg.Extension {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	path, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if l.cache.Delete(path) {
		l.logger.Info("Script changed, cached document dropped", sslog.Fields{
			"file": filepath.Base(path),
			"op":   event.Op.String(),
		})
	}

	if l.onChange != nil {
		l.onChange(path)
	}
}
