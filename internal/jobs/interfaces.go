package jobs

import (
	"context"
	"time"
)

// Fetcher retrieves the raw bytes behind a URL. The boolean is false for
// any transport failure; callers treat that as "skip this unit of work."
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, bool)
}

// Cache is a key/value store with per-entry TTL and best-effort disk
// persistence. Get never returns an entry older than its ttl; GetStale
// additionally admits entries within the stale-if-error grace window.
type Cache interface {
	Get(key string) ([]byte, bool)
	GetStale(key string, grace time.Duration) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Contains(key string) bool
	Remove(key string)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job record IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
