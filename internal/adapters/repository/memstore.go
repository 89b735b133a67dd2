package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/pkg/metrics"
)

// MemoryStore keeps the event log in memory. Readers load the current
// snapshot atomically and never block; writers serialize on mu.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[Snapshot]
	now      func() time.Time
	name     string

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs an empty store and starts its metrics updater.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		now:                   time.Now,
		name:                  DefaultName,
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Name returns the team label the store reports metrics under.
func (s *MemoryStore) Name() string { return s.name }

// Replace implements Store.
func (s *MemoryStore) Replace(_ context.Context, events []model.Event, meta Meta) (*Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := build(events, meta)
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = s.now()
	}
	prev := s.snapshot.Load()
	changed := prev == nil || prev.Fingerprint != snap.Fingerprint
	s.snapshot.Store(snap)
	s.updateMetrics()
	return snap, changed
}

// Snapshot implements Store.
func (s *MemoryStore) Snapshot(_ context.Context) (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	if snap := s.snapshot.Load(); snap != nil {
		return len(snap.Events)
	}
	return 0
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func build(events []model.Event, meta Meta) *Snapshot {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	snap := &Snapshot{
		Meta:        meta,
		Events:      sorted,
		Fingerprint: Fingerprint(sorted),
	}
	shooters := make(map[string]struct{})
	keepers := make(map[string]struct{})
	for _, e := range sorted {
		shooters[e.Shooter] = struct{}{}
		keepers[e.Keeper] = struct{}{}
	}
	if len(sorted) > 0 {
		snap.Earliest = sorted[0].Date
		snap.Latest = sorted[len(sorted)-1].Date
	}
	snap.Shooters = keys(shooters)
	snap.Keepers = keys(keepers)
	return snap
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *MemoryStore) updateMetrics() {
	snap := s.snapshot.Load()
	if snap == nil {
		return
	}
	metrics.UpdateEventsLoaded(s.name, len(snap.Events))
	metrics.UpdateEntities(s.name, string(model.Shooter), len(snap.Shooters))
	metrics.UpdateEntities(s.name, string(model.Keeper), len(snap.Keepers))
}
