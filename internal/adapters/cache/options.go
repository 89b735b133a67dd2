package cache

import (
	"time"

	"github.com/okian/penalty/pkg/logger"
)

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithMaxSize bounds the number of entries; older entries are evicted first.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxSize = n
		}
	}
}

// WithTTL expires entries after d. Zero keeps them until evicted.
func WithTTL(d time.Duration) MemoryOption {
	return func(m *Memory) {
		if d >= 0 {
			m.ttl = d
		}
	}
}

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// RedisOption configures a Redis cache.
type RedisOption func(*Redis)

// WithPrefix namespaces every key.
func WithPrefix(p string) RedisOption {
	return func(r *Redis) {
		if p != "" {
			r.prefix = p
		}
	}
}

// WithRedisTTL sets the expiry of stored entries.
func WithRedisTTL(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d >= 0 {
			r.ttl = d
		}
	}
}

// TieredOption configures a Tiered cache.
type TieredOption func(*Tiered)

// WithLogger sets the logger used to report backend failures.
func WithLogger(lg logger.Logger) TieredOption {
	return func(t *Tiered) {
		if lg != nil {
			t.logger = lg
		}
	}
}
