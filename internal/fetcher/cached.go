package fetcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/job-finders/app/internal/cache"
	"github.com/job-finders/app/internal/jobs"
	"github.com/job-finders/app/internal/metrics"
)

// Cached decorates a Fetcher with the response cache. Fresh hits skip the
// network entirely; on a failed re-fetch an entry past its ttl but within
// the stale-if-error grace window is served instead of failing.
type Cached struct {
	fetcher jobs.Fetcher
	cache   jobs.Cache
	ttl     time.Duration
	grace   time.Duration
	logger  *zap.Logger
}

// NewCached wraps fetcher with the response cache.
func NewCached(fetcher jobs.Fetcher, c jobs.Cache, ttl, grace time.Duration, logger *zap.Logger) *Cached {
	return &Cached{
		fetcher: fetcher,
		cache:   c,
		ttl:     ttl,
		grace:   grace,
		logger:  logger,
	}
}

// Fetch consults the cache before going to the network.
func (c *Cached) Fetch(ctx context.Context, url string) ([]byte, bool) {
	key := cache.Key("fetch", url)
	if body, ok := c.cache.Get(key); ok {
		metrics.ObserveCacheLookup("hit")
		return body, true
	}
	metrics.ObserveCacheLookup("miss")

	body, ok := c.fetcher.Fetch(ctx, url)
	if ok {
		c.cache.Set(key, body, c.ttl)
		return body, true
	}

	if stale, ok := c.cache.GetStale(key, c.grace); ok {
		c.logger.Info("serving stale response after fetch failure", zap.String("url", url))
		metrics.ObserveFetch("stale")
		return stale, true
	}
	return nil, false
}
