// Package trend groups events into ordered per-period series.
package trend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/penalty/internal/domain/decay"
	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/internal/domain/ratio"
	"github.com/okian/penalty/internal/domain/scoring"
)

// MaxPeriods bounds zero-filled axes.
const MaxPeriods = 5000

// Metric selects what is computed per period.
type Metric string

// Metrics.
const (
	Count Metric = "count"
	Score Metric = "score"
	Ratio Metric = "ratio"
)

// ParseMetric accepts a metric name; empty means Count.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Count, nil
	case Count, Score, Ratio:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMetric, s)
}

// Fill decides how periods without events are reported.
type Fill string

// Fill policies.
const (
	FillOmit Fill = "omit"
	FillZero Fill = "zero"
)

// ParseFill accepts "omit" or "zero"/"zero-fill"; empty means FillOmit.
func ParseFill(s string) (Fill, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "omit":
		return FillOmit, nil
	case "zero", "zero-fill", "zerofill":
		return FillZero, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFill, s)
}

// Query configures one series. An empty Entity selects the whole log.
type Query struct {
	Entity string
	Role   model.Role
	Bucket Bucket
	Metric Metric
	Fill   Fill

	// Outcomes restricts Count to these outcomes; nil counts all.
	Outcomes []model.Outcome

	// Score settings.
	Points    scoring.PointMap
	Rate      float64
	Reference time.Time

	// Ratio settings. Role, Rate and Reference are taken from the query.
	Ratio ratio.Spec

	// Optional inclusive range; also bounds the zero-filled axis.
	From, To time.Time
}

// Point is one period of a series. Value is meaningful only when Defined;
// empty ratio periods are undefined.
type Point struct {
	Period  time.Time
	Label   string
	Value   float64
	Defined bool
	Count   int
}

func (q Query) normalize() (Query, error) {
	if q.Role == "" {
		q.Role = model.Shooter
	}
	if q.Bucket == "" {
		q.Bucket = Month
	}
	if _, err := ParseBucket(string(q.Bucket)); err != nil {
		return q, err
	}
	if q.Metric == "" {
		q.Metric = Count
	}
	if _, err := ParseMetric(string(q.Metric)); err != nil {
		return q, err
	}
	if q.Fill == "" {
		q.Fill = FillOmit
	}
	if _, err := ParseFill(string(q.Fill)); err != nil {
		return q, err
	}
	if q.Metric == Score {
		if err := decay.ValidateRate(q.Rate); err != nil {
			return q, err
		}
	}
	q.Ratio.Role = q.Role
	q.Ratio.Rate = q.Rate
	q.Ratio.Reference = q.Reference
	return q, nil
}

// Build returns the series for q in ascending period order.
func Build(events []model.Event, q Query) ([]Point, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}

	groups := make(map[time.Time][]model.Event)
	for _, e := range model.Filter(events, q.From, q.To) {
		if q.Entity != "" && q.Role.Actor(e) != q.Entity {
			continue
		}
		start := q.Bucket.Truncate(e.Date)
		groups[start] = append(groups[start], e)
	}

	periods, err := q.axis(groups)
	if err != nil {
		return nil, err
	}

	out := make([]Point, 0, len(periods))
	for _, start := range periods {
		p, err := q.point(start, groups[start])
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", q.Bucket.Label(start), err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (q Query) axis(groups map[time.Time][]model.Event) ([]time.Time, error) {
	if q.Fill == FillOmit {
		periods := make([]time.Time, 0, len(groups))
		for start := range groups {
			periods = append(periods, start)
		}
		sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
		return periods, nil
	}

	var first, last time.Time
	for start := range groups {
		if first.IsZero() || start.Before(first) {
			first = start
		}
		if last.IsZero() || start.After(last) {
			last = start
		}
	}
	if !q.From.IsZero() {
		first = q.Bucket.Truncate(q.From)
	}
	if !q.To.IsZero() {
		last = q.Bucket.Truncate(q.To)
	}
	if first.IsZero() || last.IsZero() || last.Before(first) {
		return []time.Time{}, nil
	}

	var periods []time.Time
	for t := first; !t.After(last); t = q.Bucket.Next(t) {
		if len(periods) == MaxPeriods {
			return nil, fmt.Errorf("%w: more than %d %s periods", ErrRangeTooLarge, MaxPeriods, q.Bucket)
		}
		periods = append(periods, t)
	}
	return periods, nil
}

func (q Query) point(start time.Time, events []model.Event) (Point, error) {
	p := Point{Period: start, Label: q.Bucket.Label(start)}
	switch q.Metric {
	case Score:
		w, err := decay.New(q.Rate, q.Reference)
		if err != nil {
			return p, err
		}
		for _, e := range events {
			weight, err := w.Of(e)
			if err != nil {
				return p, err
			}
			p.Value += q.Points[e.Outcome] * weight
			p.Count++
		}
		p.Defined = true
	case Ratio:
		v, err := ratio.Pooled(events, q.Ratio)
		if err != nil {
			return p, err
		}
		p.Value, p.Defined, p.Count = v.Ratio, v.Defined, len(events)
	default:
		allowed := make(map[model.Outcome]bool, len(q.Outcomes))
		for _, o := range q.Outcomes {
			allowed[o] = true
		}
		for _, e := range events {
			if len(allowed) == 0 || allowed[e.Outcome] {
				p.Count++
			}
		}
		p.Value, p.Defined = float64(p.Count), true
	}
	return p, nil
}
