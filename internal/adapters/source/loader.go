// Package source reads penalty event logs from files or http(s) URLs, with a
// fallback source when the primary cannot be used.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/pkg/logger"
	"github.com/okian/penalty/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Origin tells which configured source produced a load.
type Origin string

// Origins.
const (
	OriginPrimary  Origin = "primary"
	OriginFallback Origin = "fallback"
)

// Result is a validated event log plus where it came from.
type Result struct {
	Events   []model.Event
	Origin   Origin
	Location string
	// Warning is set when the fallback was used, for display to users.
	Warning  string
	Latency  time.Duration
}

// Loader reads the primary source and falls back to the secondary one when
// the primary is missing, unreachable or empty. Malformed data never falls
// back: it is reported so the log can be fixed.
type Loader struct {
	primary  string
	fallback string
	client   *http.Client
	timeout  time.Duration
	logger   logger.Logger
}

// New creates a Loader. Either location may be empty.
func New(primary, fallback string, opts ...Option) *Loader {
	l := &Loader{
		primary:  strings.TrimSpace(primary),
		fallback: strings.TrimSpace(fallback),
		client:   http.DefaultClient,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("source")
	}
	return l
}

// Load reads and validates the event log.
func (l *Loader) Load(ctx context.Context) (Result, error) {
	start := time.Now()

	events, primaryErr := l.read(ctx, l.primary)
	if primaryErr == nil {
		return l.done(ctx, Result{Events: events, Origin: OriginPrimary, Location: l.primary}, start), nil
	}
	if !canFallBack(primaryErr) || l.fallback == "" {
		metrics.RecordSourceLoadError()
		return Result{}, primaryErr
	}

	l.logger.Warn(ctx, "primary source unusable, using fallback",
		logger.String("primary", l.primary),
		logger.String("fallback", l.fallback),
		logger.Error(primaryErr),
	)
	events, fallbackErr := l.read(ctx, l.fallback)
	if fallbackErr != nil {
		metrics.RecordSourceLoadError()
		return Result{}, fmt.Errorf("%w: primary: %w; fallback: %w", ErrNoSource, primaryErr, fallbackErr)
	}
	metrics.RecordSourceFallback()
	res := Result{
		Events:   events,
		Origin:   OriginFallback,
		Location: l.fallback,
		Warning:  fmt.Sprintf("primary source unavailable (%v); showing data from %s", primaryErr, l.fallback),
	}
	return l.done(ctx, res, start), nil
}

func (l *Loader) done(ctx context.Context, res Result, start time.Time) Result {
	res.Latency = time.Since(start)
	metrics.RecordSourceLoad(string(res.Origin), float64(res.Latency.Milliseconds()), time.Now().Unix())
	l.logger.Info(ctx, "event log loaded",
		logger.String("origin", string(res.Origin)),
		logger.String("location", res.Location),
		logger.Int("events", len(res.Events)),
		logger.Duration("latency", res.Latency),
	)
	return res
}

func canFallBack(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrEmpty)
}

func (l *Loader) read(ctx context.Context, location string) ([]model.Event, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: not configured", ErrUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	rc, err := l.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	events, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, location)
	}
	return events, nil
}

func (l *Loader) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, location, err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, location, err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%w: %s: status %d", ErrUnavailable, location, resp.StatusCode)
		}
		return resp.Body, nil
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return f, nil
}
