// Package service provides the analytics service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/penalty/internal/adapters/cache"
	"github.com/okian/penalty/internal/adapters/refresh"
	"github.com/okian/penalty/internal/adapters/repository"
	"github.com/okian/penalty/internal/config"
	"github.com/okian/penalty/internal/domain/decay"
	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/internal/domain/scoring"
	"github.com/okian/penalty/internal/domain/types"
	"github.com/okian/penalty/pkg/logger"
	"github.com/okian/penalty/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

// Service answers analytics queries over the current snapshot of each
// team's event log. Results are memoized per snapshot fingerprint.
type Service struct {
	mu sync.RWMutex

	// Core components
	loaders map[string]refresh.Loader
	teams   map[string]*team
	layers  []cache.Cache
	cache   *cache.Tiered

	// Configuration
	defaultTeam     string
	rate            float64
	shooterPoints   scoring.PointMap
	keeperPoints    scoring.PointMap
	reference       string
	defaultTopN     int
	maxTopN         int
	refreshInterval time.Duration
	now             func() time.Time

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// team is one independently loaded event log.
type team struct {
	name      string
	store     *repository.MemoryStore
	refresher *refresh.Refresher
}

// view is a team's snapshot together with the reference date a query
// resolved against it.
type view struct {
	team string
	snap *repository.Snapshot
	ref  time.Time
}

func (v view) meta() types.Meta {
	return types.Meta{
		Team:          v.team,
		Fingerprint:   v.snap.FingerprintHex(),
		ReferenceDate: types.Date(v.ref),
		Origin:        v.snap.Origin,
		Warning:       v.snap.Warning,
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	rate, _ := decay.RateFromHalfLife(config.DefaultHalfLifeDays)
	s := &Service{
		rate:          rate,
		shooterPoints: scoring.DefaultShooterPoints(),
		keeperPoints:  scoring.DefaultKeeperPoints(),
		reference:     config.ReferenceNow,
		defaultTopN:   10,
		maxTopN:       100,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultTopN > s.maxTopN {
		s.defaultTopN = s.maxTopN
	}
	return s
}

// Start creates a store and refresher per team, performs the first loads
// and starts the periodic refreshers. A failed first load is logged; that
// team's queries then report repository.ErrNotLoaded until a reload succeeds.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if len(s.loaders) == 0 {
		return fmt.Errorf("start: %w: no event source", ErrInvalidQuery)
	}
	names := s.teamNames()
	if s.defaultTeam == "" {
		s.defaultTeam = names[0]
		if _, ok := s.loaders[config.DefaultTeam]; ok {
			s.defaultTeam = config.DefaultTeam
		}
	}
	if _, ok := s.loaders[s.defaultTeam]; !ok {
		return fmt.Errorf("start: default %w %q", ErrUnknownTeam, s.defaultTeam)
	}

	s.logger.Info(ctx, "starting analytics service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.cache = cache.NewTiered(s.layers)
	s.teams = make(map[string]*team, len(names))
	for _, name := range names {
		lg := s.logger.With(logger.String("team", name))
		store := repository.NewMemoryStore(runCtx, repository.WithName(name))
		t := &team{
			name:  name,
			store: store,
			refresher: refresh.New(s.loaders[name], store,
				refresh.WithPurger(s.cache),
				refresh.WithInterval(s.refreshInterval),
				refresh.WithLogger(lg),
			),
		}
		if _, err := t.refresher.Reload(ctx); err != nil {
			metrics.RecordErrorByType("load_error", "high")
			lg.Error(ctx, "initial load failed", logger.Error(err))
		}
		go t.refresher.Run(runCtx)
		s.teams[name] = t
	}

	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.Any("teams", names),
		logger.String("defaultTeam", s.defaultTeam),
		logger.Float64("decayRate", s.rate),
		logger.String("reference", s.reference),
		logger.Int("cacheLayers", len(s.layers)),
		logger.Duration("refreshInterval", s.refreshInterval),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping analytics service...")
	for _, t := range s.teams {
		if err := t.refresher.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "refresher shutdown", logger.String("team", t.name), logger.Error(err))
		}
	}
	s.cancel()
	for _, t := range s.teams {
		_ = t.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "analytics service stopped")
}

// Reload re-reads the event source of the named team; empty names the
// default team.
func (s *Service) Reload(ctx context.Context, name string) (types.Reload, error) {
	t, err := s.team(name)
	if err != nil {
		return types.Reload{}, err
	}

	out, err := t.refresher.Reload(ctx)
	if err != nil {
		metrics.RecordErrorByType("load_error", "high")
		return types.Reload{}, err
	}
	ref, err := s.referenceDate(out.Snapshot, Window{})
	if err != nil {
		return types.Reload{}, err
	}
	v := view{team: t.name, snap: out.Snapshot, ref: ref}
	return types.Reload{Meta: v.meta(), Events: len(out.Snapshot.Events), Changed: out.Changed}, nil
}

// Stats describes a team's loaded snapshot and the active cache layers.
func (s *Service) Stats(ctx context.Context, name string) (types.Stats, error) {
	v, err := s.open(ctx, name, Window{})
	if err != nil {
		return types.Stats{}, err
	}
	layers := make([]string, 0, len(s.layers))
	for _, l := range s.layers {
		if l != nil {
			layers = append(layers, l.Name())
		}
	}
	snap := v.snap
	return types.Stats{
		Meta:     v.meta(),
		Location: snap.Location,
		LoadedAt: snap.LoadedAt.UTC().Format(time.RFC3339),
		Events:   len(snap.Events),
		Shooters: len(snap.Shooters),
		Keepers:  len(snap.Keepers),
		Earliest: types.Date(snap.Earliest),
		Latest:   types.Date(snap.Latest),
		Cache:    layers,
		Teams:    s.teamNames(),
	}, nil
}

func (s *Service) teamNames() []string {
	names := make([]string, 0, len(s.loaders))
	for name := range s.loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// team resolves name, or the default team when name is empty.
func (s *Service) team(name string) (*team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	if name == "" {
		name = s.defaultTeam
	}
	t, ok := s.teams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %w %q", ErrInvalidQuery, ErrUnknownTeam, name)
	}
	return t, nil
}

// open loads the named team's snapshot and resolves the reference date for
// a query over w.
func (s *Service) open(ctx context.Context, name string, w Window) (view, error) {
	t, err := s.team(name)
	if err != nil {
		return view{}, err
	}
	snap, err := t.store.Snapshot(ctx)
	if err != nil {
		return view{}, err
	}
	ref, err := s.referenceDate(snap, w)
	if err != nil {
		return view{}, err
	}
	return view{team: t.name, snap: snap, ref: ref}, nil
}

// referenceDate resolves the configured reference against the snapshot.
// "latest" means the newest event inside w, or in the whole log when w is
// open or selects nothing.
func (s *Service) referenceDate(snap *repository.Snapshot, w Window) (time.Time, error) {
	latest := snap.Latest
	if strings.EqualFold(strings.TrimSpace(s.reference), config.ReferenceLatest) && !w.open() {
		if d, ok := newestIn(snap.Events, w); ok {
			latest = d
		}
	}
	ref, err := config.ResolveReference(s.reference, s.now(), latest)
	if err != nil {
		return time.Time{}, err
	}
	return ref.UTC(), nil
}

// newestIn returns the date of the newest event inside w. events must be
// in date order.
func newestIn(events []model.Event, w Window) (time.Time, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Between(w.From, w.To) {
			return events[i].Date, true
		}
	}
	return time.Time{}, false
}

// pointsKey renders both point maps for cache keys.
func (s *Service) pointsKey() string {
	var b strings.Builder
	for i, pm := range []scoring.PointMap{s.shooterPoints, s.keeperPoints} {
		if i > 0 {
			b.WriteByte('|')
		}
		for j, o := range model.Outcomes() {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(string(o))
			b.WriteByte('=')
			b.WriteString(strconv.FormatFloat(pm[o], 'g', -1, 64))
		}
	}
	return b.String()
}

// memo returns the cached result of compute for the key built from query,
// the team, the snapshot fingerprint, the reference date, the decay rate,
// the point maps and params.
func memo[T any](ctx context.Context, s *Service, v view, query string, params []string, compute func() (T, error)) (T, error) {
	var zero T
	key := cache.Key(query, v.snap.FingerprintHex(),
		append([]string{v.team, types.Date(v.ref), strconv.FormatFloat(s.rate, 'g', -1, 64), s.pointsKey()}, params...)...)

	if s.cache.Enabled() {
		if raw, ok, _ := s.cache.Get(ctx, key); ok {
			var out T
			if err := json.Unmarshal(raw, &out); err == nil {
				metrics.RecordQuery(query, "hit")
				return out, nil
			}
			s.logger.Warn(ctx, "discarding undecodable cache entry", logger.String("key", key))
		}
	}

	start := time.Now()
	out, err := compute()
	metrics.RecordQueryLatency(query, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		if errors.Is(err, decay.ErrIntegrity) {
			metrics.RecordIntegrityError(query)
			s.logger.Error(ctx, "integrity error", logger.String("query", query), logger.Error(err))
		}
		return zero, err
	}

	if !s.cache.Enabled() {
		metrics.RecordQuery(query, "bypass")
		return out, nil
	}
	metrics.RecordQuery(query, "miss")
	if raw, err := json.Marshal(out); err == nil {
		_ = s.cache.Set(ctx, key, raw)
	}
	return out, nil
}
