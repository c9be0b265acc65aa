// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     cache
// Description: Thread-safe cache of parsed documents with TTL and FIFO eviction
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package cache

import (
	"sync"
	"time"

	"github.com/edwingeng/deque"
	"github.com/frle10/smartscript/foundation/smartscript/ast"
	"github.com/segmentio/fasthash/fnv1a"
	"github.com/tevino/abool/v2"
)

// Entry represents a parsed document together with the fingerprint of its source
type Entry struct {
	Document   *ast.DocumentNode
	Hash       uint64
	Size       int
	Expiration time.Time

	seq uint64
}

// IsExpired checks if the entry has expired
func (e *Entry) IsExpired() bool {
	if e.Expiration.IsZero() {
		return false // Never expires
	}
	return time.Now().After(e.Expiration)
}

// ParseFunc turns template source into a document
type ParseFunc func(source string) (*ast.DocumentNode, error)

// Stats is a snapshot of the cache counters
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	HitRate   float64
}

// orderKey records insertion order; seq identifies the entry generation so
// stale keys left behind by Delete or re-Set are skipped during eviction.
type orderKey struct {
	key string
	seq uint64
}

// Cache is a thread-safe in-memory document cache with TTL support. An entry
// only counts as a hit while the cached source fingerprint matches.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]*Entry
	order    deque.Deque
	maxItems int
	ttl      time.Duration
	seq      uint64

	// Metrics
	hits      int64
	misses    int64
	evictions int64

	running *abool.AtomicBool
	stopCh  chan struct{}
}

// Config holds cache configuration
type Config struct {
	MaxItems        int
	TTL             time.Duration // 0 keeps entries until evicted
	CleanupInterval time.Duration // 0 disables the background sweep
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxItems:        256,
		TTL:             10 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// New creates a new cache instance
func New(cfg Config) *Cache {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultConfig().MaxItems
	}

	c := &Cache{
		items:    make(map[string]*Entry),
		order:    deque.NewDeque(),
		maxItems: cfg.MaxItems,
		ttl:      cfg.TTL,
		running:  abool.New(),
		stopCh:   make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		c.running.Set()
		go c.cleanupLoop(cfg.CleanupInterval)
	}

	return c
}

// Fingerprint returns the hash stored with every entry
func Fingerprint(source string) uint64 {
	return fnv1a.HashString64(source)
}

// Get returns the document cached under key if it was parsed from source
func (c *Cache) Get(key, source string) (*ast.DocumentNode, bool) {
	hash := Fingerprint(source)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.items[key]
	if !exists || entry.Hash != hash {
		c.misses++
		return nil, false
	}
	if entry.IsExpired() {
		delete(c.items, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.Document, true
}

// Set stores a document parsed from source under key
func (c *Cache) Set(key, source string, doc *ast.DocumentNode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists {
		for len(c.items) >= c.maxItems && c.evictOldest() {
		}
	}

	var exp time.Time
	if c.ttl > 0 {
		exp = time.Now().Add(c.ttl)
	}

	c.seq++
	c.items[key] = &Entry{
		Document:   doc,
		Hash:       Fingerprint(source),
		Size:       len(source),
		Expiration: exp,
		seq:        c.seq,
	}
	c.order.PushBack(orderKey{key: key, seq: c.seq})
	c.compactOrder()
}

// GetOrParse returns the cached document for key or parses source and caches
// the result. The boolean reports a cache hit. Parse errors are not cached.
func (c *Cache) GetOrParse(key, source string, parse ParseFunc) (*ast.DocumentNode, bool, error) {
	if doc, ok := c.Get(key, source); ok {
		return doc, true, nil
	}

	doc, err := parse(source)
	if err != nil {
		return nil, false, err
	}

	c.Set(key, source, doc)
	return doc, false, nil
}

// Delete removes a document from the cache and reports whether it was present
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.items[key]
	delete(c.items, key)
	return exists
}

// Clear removes all items from the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*Entry)
	c.order = deque.NewDeque()
}

// Size returns the number of items in the cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns the cached keys in insertion order
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for n := c.order.Len(); n > 0; n-- {
		ok := c.order.PopFront().(orderKey)
		c.order.PushBack(ok)
		if entry, exists := c.items[ok.key]; exists && entry.seq == ok.seq {
			keys = append(keys, ok.key)
		}
	}
	return keys
}

// Stats returns cache statistics
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.items),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total) * 100
	}
	return s
}

// Close stops the background sweep. It is safe to call more than once.
func (c *Cache) Close() {
	if c.running.SetToIf(true, false) {
		close(c.stopCh)
	}
}

// evictOldest removes the first inserted live entry (must be called with lock held)
func (c *Cache) evictOldest() bool {
	for !c.order.Empty() {
		ok := c.order.PopFront().(orderKey)
		if entry, exists := c.items[ok.key]; exists && entry.seq == ok.seq {
			delete(c.items, ok.key)
			c.evictions++
			return true
		}
	}
	return false
}

// compactOrder drops stale keys once they outnumber live ones (lock held)
func (c *Cache) compactOrder() {
	if c.order.Len() <= 2*len(c.items)+16 {
		return
	}
	live := deque.NewDeque()
	for !c.order.Empty() {
		ok := c.order.PopFront().(orderKey)
		if entry, exists := c.items[ok.key]; exists && entry.seq == ok.seq {
			live.PushBack(ok)
		}
	}
	c.order = live
}

// cleanupLoop periodically removes expired entries
func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes all expired entries
func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.items {
		if entry.IsExpired() {
			delete(c.items, key)
		}
	}
}
