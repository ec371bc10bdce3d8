// Package cache provides the response cache used by the HTTP server.
// Results are deterministic functions of their inputs, so cached entries
// never go stale; the TTL only bounds memory.
package cache

import (
	"context"
	"time"
)

// DefaultTTL bounds how long entries live when no TTL is configured.
const DefaultTTL = time.Hour

// Cache stores rendered responses keyed by request fingerprint. Entries
// are advisory; a miss is never an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}
