// Package cache memoizes encoded query results. Keys embed the event log
// fingerprint, so a reloaded log never serves stale entries.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Cache stores encoded results by key.
type Cache interface {
	// Get returns the value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	// Purge drops every entry owned by this cache.
	Purge(ctx context.Context) error
	// Name labels the backend in metrics and logs.
	Name() string
}

// Key joins the query name, fingerprint and parameters into a compact key.
// Parameters are hashed so arbitrary filter values stay key-safe.
func Key(query, fingerprint string, params ...string) string {
	h := xxhash.Sum64String(strings.Join(params, "\x1f"))
	return fmt.Sprintf("%s:%s:%016x", query, fingerprint, h)
}
