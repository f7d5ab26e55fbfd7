// Package cache implements a TTL key/value cache with an in-memory layer
// backed by on-disk persistence, plus a function-result memoizer.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/job-finders/app/internal/jobs"
)

// Config captures cache location and expiry policy.
type Config struct {
	// Dir is the directory holding one persisted file per cache key.
	Dir string
	// MaxEntries bounds the in-memory entry count; exceeding it evicts
	// the single oldest-by-write entry.
	MaxEntries int
	// DefaultTTL applies when Set is called with a non-positive ttl.
	DefaultTTL time.Duration
}

type entry struct {
	value     []byte
	timestamp time.Time
	ttl       time.Duration
}

// persistedEntry is the on-disk layout: one JSON document per key holding
// enough to reconstruct expiry state after a restart.
type persistedEntry struct {
	Value     []byte `json:"value"`
	Timestamp int64  `json:"timestamp"`
	TTLSecs   int64  `json:"ttl_seconds"`
}

// Cache is safe for concurrent use. Writes are independent per key; the
// eviction scan runs under the same lock so it never races with itself.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	cfg     Config
	clock   jobs.Clock
	logger  *zap.Logger
}

// New creates a Cache rooted at cfg.Dir, rehydrating nothing eagerly:
// persisted entries are loaded lazily on first Get of their key.
func New(cfg Config, clock jobs.Clock, logger *zap.Logger) (*Cache, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1023
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 12 * time.Hour
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{
		entries: make(map[string]entry),
		cfg:     cfg,
		clock:   clock,
		logger:  logger,
	}, nil
}

// Get returns the value for key if present and unexpired, loading from the
// persistent backing on an in-memory miss. A missing key is not an error.
func (c *Cache) Get(key string) ([]byte, bool) {
	return c.lookup(key, 0)
}

// GetStale behaves like Get but also admits entries whose age exceeds ttl
// by at most grace. Used to serve stale data when a re-fetch fails.
func (c *Cache) GetStale(key string, grace time.Duration) ([]byte, bool) {
	return c.lookup(key, grace)
}

func (c *Cache) lookup(key string, grace time.Duration) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e, ok = c.loadLocked(key)
		if !ok {
			return nil, false
		}
	}
	// Expired entries are left in place for Set to overwrite or eviction
	// to reclaim. Deleting here would strip a memory-only entry (one whose
	// persist failed) before a later stale read inside its grace window.
	if c.clock.Now().Sub(e.timestamp) > e.ttl+grace {
		return nil, false
	}
	return append([]byte(nil), e.value...), true
}

// Set stores value under key with the current timestamp and persists it
// synchronously. A persistence fault degrades that entry to memory-only.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{
		value:     append([]byte(nil), value...),
		timestamp: c.clock.Now(),
		ttl:       ttl,
	}
	c.entries[key] = e
	c.persistLocked(key, e)
	if len(c.entries) > c.cfg.MaxEntries {
		c.evictLocked()
	}
}

// Contains reports whether key holds an unexpired in-memory entry.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	return c.clock.Now().Sub(e.timestamp) <= e.ttl
}

// Remove deletes both the in-memory and persisted copy of key.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	c.removeFileLocked(key)
}

// Len reports the in-memory entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops the single globally oldest-by-timestamp entry
// (least recently written, not LRU by access).
func (c *Cache) evictLocked() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, e := range c.entries {
		if !found || e.timestamp.Before(oldest) {
			oldestKey = key
			oldest = e.timestamp
			found = true
		}
	}
	if !found {
		return
	}
	delete(c.entries, oldestKey)
	c.removeFileLocked(oldestKey)
}

func (c *Cache) persistLocked(key string, e entry) {
	doc := persistedEntry{
		Value:     e.value,
		Timestamp: e.timestamp.Unix(),
		TTLSecs:   int64(e.ttl / time.Second),
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		c.logger.Warn("cache entry marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := os.WriteFile(c.filePath(key), raw, 0o600); err != nil {
		c.logger.Warn("cache entry persist failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) loadLocked(key string) (entry, bool) {
	raw, err := os.ReadFile(c.filePath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache entry load failed", zap.String("key", key), zap.Error(err))
		}
		return entry{}, false
	}
	var doc persistedEntry
	if err := json.Unmarshal(raw, &doc); err != nil {
		c.logger.Warn("cache entry decode failed", zap.String("key", key), zap.Error(err))
		return entry{}, false
	}
	e := entry{
		value:     doc.Value,
		timestamp: time.Unix(doc.Timestamp, 0),
		ttl:       time.Duration(doc.TTLSecs) * time.Second,
	}
	c.entries[key] = e
	return e, true
}

func (c *Cache) removeFileLocked(key string) {
	if err := os.Remove(c.filePath(key)); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("cache entry delete failed", zap.String("key", key), zap.Error(err))
	}
}

// filePath maps a key to its persisted file; keys are hashed so arbitrary
// URLs become safe filenames.
func (c *Cache) filePath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.cfg.Dir, hex.EncodeToString(sum[:])+".json")
}
