// Package refresh keeps the in-memory snapshot in step with the event source.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/penalty/internal/adapters/repository"
	"github.com/okian/penalty/internal/adapters/source"
	"github.com/okian/penalty/pkg/logger"
)

// Loader reads the event log.
type Loader interface {
	Load(ctx context.Context) (source.Result, error)
}

// Purger drops cached results.
type Purger interface {
	Purge(ctx context.Context) error
}

// Outcome reports what a reload did.
type Outcome struct {
	Snapshot *repository.Snapshot
	Changed  bool
}

// Refresher loads the source into a store, on demand and on a ticker.
type Refresher struct {
	loader   Loader
	store    repository.Store
	purger   Purger
	interval time.Duration

	// Reloads are serialized so an older read never overwrites a newer one.
	mu sync.Mutex

	shutdown chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	logger logger.Logger
}

// New creates a Refresher.
func New(loader Loader, store repository.Store, opts ...Option) *Refresher {
	r := &Refresher{
		loader:   loader,
		store:    store,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("refresh"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reload reads the source once and publishes the result. The cache is
// purged only when the content fingerprint changed.
func (r *Refresher) Reload(ctx context.Context) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.loader.Load(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("reload: %w", err)
	}
	snap, changed := r.store.Replace(ctx, res.Events, repository.Meta{
		Origin:   string(res.Origin),
		Location: res.Location,
		Warning:  res.Warning,
	})
	if changed && r.purger != nil {
		if err := r.purger.Purge(ctx); err != nil {
			r.logger.Warn(ctx, "cache purge failed", logger.Error(err))
		}
	}
	r.logger.Info(ctx, "event log loaded",
		logger.String("origin", string(res.Origin)),
		logger.Int("events", len(res.Events)),
		logger.Bool("changed", changed),
		logger.String("fingerprint", snap.FingerprintHex()),
	)
	return Outcome{Snapshot: snap, Changed: changed}, nil
}

// Run reloads on every tick until ctx is canceled or Shutdown is called.
// Failed reloads are logged and the previous snapshot stays in place.
func (r *Refresher) Run(ctx context.Context) {
	defer close(r.done)

	if r.interval <= 0 {
		select {
		case <-ctx.Done():
		case <-r.shutdown:
		}
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case <-ticker.C:
			if _, err := r.Reload(ctx); err != nil {
				r.logger.Error(ctx, "periodic reload failed", logger.Error(err))
			}
		}
	}
}

// Shutdown stops Run and waits for it to return.
func (r *Refresher) Shutdown(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.shutdown) })

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
