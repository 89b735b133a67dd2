package repository

import "time"

// DefaultName labels a store created without WithName.
const DefaultName = "default"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithClock overrides time.Now for LoadedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithName sets the team label used for the store's metrics.
func WithName(name string) Option {
	return func(s *MemoryStore) {
		if name != "" {
			s.name = name
		}
	}
}
