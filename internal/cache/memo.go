package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/job-finders/app/internal/jobs"
)

// Key derives a deterministic cache key from an operation name and its
// arguments.
func Key(op string, args ...string) string {
	return op + "(" + strings.Join(args, ",") + ")"
}

// Memoize wraps fn so repeated calls with the same argument return the
// cached result while it is fresh, instead of re-invoking fn. Results
// round-trip through JSON so they share the cache's persistence.
func Memoize[T any](
	c jobs.Cache,
	op string,
	ttl time.Duration,
	fn func(ctx context.Context, arg string) (T, error),
) func(ctx context.Context, arg string) (T, error) {
	return func(ctx context.Context, arg string) (T, error) {
		key := Key(op, arg)
		if raw, ok := c.Get(key); ok {
			var out T
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
			// Undecodable entry: drop it and recompute.
			c.Remove(key)
		}

		out, err := fn(ctx, arg)
		if err != nil {
			var zero T
			return zero, err
		}
		if raw, err := json.Marshal(out); err == nil {
			c.Set(key, raw, ttl)
		}
		return out, nil
	}
}
