package cache

import (
	"context"

	"github.com/okian/penalty/pkg/logger"
	"github.com/okian/penalty/pkg/metrics"
)

// Tiered reads layers in order and back-fills faster layers on a hit.
// Backend failures are logged and treated as misses so a cache outage never
// fails a query.
type Tiered struct {
	layers []Cache
	logger logger.Logger
}

// NewTiered builds a cache over layers, fastest first. Nil layers are skipped.
func NewTiered(layers []Cache, opts ...TieredOption) *Tiered {
	t := &Tiered{}
	for _, l := range layers {
		if l != nil {
			t.layers = append(t.layers, l)
		}
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logger.Get().Named("cache")
	}
	return t
}

// Name implements Cache.
func (t *Tiered) Name() string { return "tiered" }

// Enabled reports whether any layer is configured.
func (t *Tiered) Enabled() bool { return len(t.layers) > 0 }

// Get implements Cache.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for i, l := range t.layers {
		val, ok, err := l.Get(ctx, key)
		if err != nil {
			metrics.RecordCacheError(l.Name())
			t.logger.Warn(ctx, "cache get failed", logger.String("backend", l.Name()), logger.Error(err))
			continue
		}
		if !ok {
			metrics.RecordCacheMiss(l.Name())
			continue
		}
		metrics.RecordCacheHit(l.Name())
		for _, upper := range t.layers[:i] {
			if err := upper.Set(ctx, key, val); err != nil {
				metrics.RecordCacheError(upper.Name())
			}
		}
		return val, true, nil
	}
	return nil, false, nil
}

// Set implements Cache.
func (t *Tiered) Set(ctx context.Context, key string, val []byte) error {
	for _, l := range t.layers {
		if err := l.Set(ctx, key, val); err != nil {
			metrics.RecordCacheError(l.Name())
			t.logger.Warn(ctx, "cache set failed", logger.String("backend", l.Name()), logger.Error(err))
		}
	}
	return nil
}

// Purge implements Cache.
func (t *Tiered) Purge(ctx context.Context) error {
	for _, l := range t.layers {
		if err := l.Purge(ctx); err != nil {
			metrics.RecordCacheError(l.Name())
			t.logger.Warn(ctx, "cache purge failed", logger.String("backend", l.Name()), logger.Error(err))
		}
	}
	return nil
}
