package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/penalty/internal/adapters/repository"
	"github.com/okian/penalty/internal/domain/distribution"
	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/internal/domain/ranking"
	"github.com/okian/penalty/internal/domain/ratio"
	"github.com/okian/penalty/internal/domain/scoring"
	"github.com/okian/penalty/internal/domain/trend"
	"github.com/okian/penalty/internal/domain/types"
)

// Metric selects what a leaderboard ranks by.
type Metric string

// Leaderboard metrics.
const (
	// MetricScore ranks by decay-weighted points.
	MetricScore Metric = "score"
	// MetricRatio ranks by goal rate for shooters and save rate for keepers.
	MetricRatio Metric = "ratio"
	// MetricAdjusted ranks by the ratio shrunk toward the population mean.
	MetricAdjusted Metric = "adjusted"
)

// ParseMetric accepts a leaderboard metric; empty means MetricScore.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MetricScore, nil
	case MetricScore, MetricRatio, MetricAdjusted:
		return m, nil
	}
	return "", fmt.Errorf("%w: metric %q", ErrInvalidQuery, s)
}

// Window is an optional inclusive date range. Zero bounds are open.
type Window struct {
	From, To time.Time
}

func (w Window) validate() error {
	if !w.From.IsZero() && !w.To.IsZero() && w.From.After(w.To) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidQuery, types.Date(w.From), types.Date(w.To))
	}
	return nil
}

func (w Window) params() []string {
	return []string{types.Date(w.From), types.Date(w.To)}
}

func (w Window) open() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// LastWindow returns the window covering the last n days, months or years
// up to ref. n <= 0 yields an open window.
func LastWindow(n int, unit string, ref time.Time) (Window, error) {
	if n <= 0 {
		return Window{}, nil
	}
	ref = model.Day(ref)
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "day", "days":
		return Window{From: ref.AddDate(0, 0, -n), To: ref}, nil
	case "month", "months":
		return Window{From: ref.AddDate(0, -n, 0), To: ref}, nil
	case "year", "years":
		return Window{From: ref.AddDate(-n, 0, 0), To: ref}, nil
	}
	return Window{}, fmt.Errorf("%w: unit %q", ErrInvalidQuery, unit)
}

// LeaderboardQuery selects a ranked list.
type LeaderboardQuery struct {
	// Team names the event log; empty selects the default team.
	Team     string
	Role     model.Role
	Metric   Metric
	N        int
	TieBreak ranking.TieBreak
	// Weighted applies decay weights to ratio metrics.
	Weighted bool
	Window
}

func (q LeaderboardQuery) params() []string {
	return append([]string{
		string(q.Role), string(q.Metric), strconv.Itoa(int(q.TieBreak)), strconv.FormatBool(q.Weighted),
	}, q.Window.params()...)
}

// Leaderboard returns the top entities for q. N is clamped to the
// configured maximum; N <= 0 uses the default.
func (s *Service) Leaderboard(ctx context.Context, q LeaderboardQuery) (types.Leaderboard, error) {
	q, err := s.normalizeLeaderboard(q)
	if err != nil {
		return types.Leaderboard{}, err
	}
	v, err := s.open(ctx, q.Team, q.Window)
	if err != nil {
		return types.Leaderboard{}, err
	}
	all, err := s.ranked(ctx, v, q)
	if err != nil {
		return types.Leaderboard{}, err
	}

	n := q.N
	if n <= 0 {
		n = s.defaultTopN
	}
	if n > s.maxTopN {
		n = s.maxTopN
	}
	entries := all
	if n < len(all) {
		entries = all[:n]
	}
	return types.Leaderboard{
		Meta:    v.meta(),
		Role:    string(q.Role),
		Metric:  string(q.Metric),
		Total:   len(all),
		Entries: entries,
	}, nil
}

// Rank returns id's position on the leaderboard selected by q.
func (s *Service) Rank(ctx context.Context, id string, q LeaderboardQuery) (types.Position, error) {
	q, err := s.normalizeLeaderboard(q)
	if err != nil {
		return types.Position{}, err
	}
	v, err := s.open(ctx, q.Team, q.Window)
	if err != nil {
		return types.Position{}, err
	}
	all, err := s.ranked(ctx, v, q)
	if err != nil {
		return types.Position{}, err
	}
	for _, e := range all {
		if e.ID == id {
			return types.Position{Meta: v.meta(), Role: string(q.Role), Metric: string(q.Metric), Total: len(all), Entry: e}, nil
		}
	}
	return types.Position{}, fmt.Errorf("%s %q: %w", q.Role, id, repository.ErrNotFound)
}

func (s *Service) normalizeLeaderboard(q LeaderboardQuery) (LeaderboardQuery, error) {
	if q.Role == "" {
		q.Role = model.Shooter
	}
	if q.Metric == "" {
		q.Metric = MetricScore
	}
	if _, err := ParseMetric(string(q.Metric)); err != nil {
		return q, err
	}
	return q, q.Window.validate()
}

// ranked returns every rankable entity of q in rank order.
func (s *Service) ranked(ctx context.Context, v view, q LeaderboardQuery) ([]types.Entry, error) {
	return memo(ctx, s, v, "leaderboard", q.params(), func() ([]types.Entry, error) {
		ref := v.ref
		events := model.Filter(v.snap.Events, q.From, q.To)

		values := make(map[string]float64)
		counts := make(map[string]int)
		switch q.Metric {
		case MetricScore:
			entities, err := scoring.Aggregate(events, scoring.Params{
				Role: q.Role, Points: s.points(q.Role), Rate: s.rate, Reference: ref,
			})
			if err != nil {
				return nil, err
			}
			for id, e := range entities {
				values[id], counts[id] = e.Score, e.Count
			}
		case MetricRatio, MetricAdjusted:
			rs, err := ratio.Compute(events, s.ratioSpec(q.Role, q.Weighted, ref, nil, nil, nil))
			if err != nil {
				return nil, err
			}
			if q.Metric == MetricAdjusted {
				rs = ratio.Adjusted(rs)
			}
			values = ratio.Ranked(rs)
			for id, r := range rs {
				counts[id] = r.Count
			}
		}

		all := ranking.All(ranking.FromMap(values), q.TieBreak)
		out := make([]types.Entry, len(all))
		for i, r := range all {
			out[i] = types.Entry{Rank: r.Rank, ID: r.ID, Value: r.Value, Count: counts[r.ID]}
		}
		return out, nil
	})
}

// RatioQuery selects per-entity ratios.
type RatioQuery struct {
	Team     string
	Role     model.Role
	Weighted bool
	// Adjusted shrinks each ratio toward the population mean.
	Adjusted bool
	// Numerator and Denominator override the outcomes counted; nil keeps
	// the role's goal or save rate and an all-outcome denominator.
	Numerator   []model.Outcome
	Denominator []model.Outcome
	Window
}

// Ratios returns the goal rate of every shooter or the save rate of every
// keeper in the log, or the fraction selected by the outcome lists.
// Entities without events in the window are undefined.
func (s *Service) Ratios(ctx context.Context, q RatioQuery) (types.Ratios, error) {
	if q.Role == "" {
		q.Role = model.Shooter
	}
	if err := q.Window.validate(); err != nil {
		return types.Ratios{}, err
	}
	v, err := s.open(ctx, q.Team, q.Window)
	if err != nil {
		return types.Ratios{}, err
	}
	params := append([]string{
		string(q.Role), strconv.FormatBool(q.Weighted), strconv.FormatBool(q.Adjusted),
		outcomeKey(q.Numerator), outcomeKey(q.Denominator),
	}, q.Window.params()...)
	out, err := memo(ctx, s, v, "ratios", params, func() (types.Ratios, error) {
		spec := s.ratioSpec(q.Role, q.Weighted, v.ref, v.snap.Entities(q.Role), q.Numerator, q.Denominator)
		values, err := ratio.Compute(model.Filter(v.snap.Events, q.From, q.To), spec)
		if err != nil {
			return types.Ratios{}, err
		}
		if q.Adjusted {
			values = ratio.Adjusted(values)
		}
		entries := make([]types.RatioEntry, 0, len(values))
		for _, r := range values {
			entries = append(entries, types.RatioEntry{
				ID:          r.ID,
				Ratio:       types.Float(r.Ratio, r.Defined),
				Numerator:   r.Numerator,
				Denominator: r.Denominator,
				Count:       r.Count,
			})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
		return types.Ratios{
			Role:        string(q.Role),
			Weighted:    q.Weighted,
			Adjusted:    q.Adjusted,
			Numerator:   outcomeNames(spec.Numerator),
			Denominator: outcomeNames(spec.Denominator),
			Entries:     entries,
		}, nil
	})
	if err != nil {
		return types.Ratios{}, err
	}
	out.Meta = v.meta()
	return out, nil
}

// TrendQuery selects a time series.
type TrendQuery struct {
	Team string
	// Entity is a shooter or keeper id; empty covers the whole log.
	Entity   string
	Role     model.Role
	Bucket   trend.Bucket
	Metric   trend.Metric
	Fill     trend.Fill
	Outcomes []model.Outcome
	Weighted bool
	// Numerator and Denominator override the outcomes of the ratio metric.
	Numerator   []model.Outcome
	Denominator []model.Outcome
	Window
}

// Trend returns the series selected by q in ascending period order.
func (s *Service) Trend(ctx context.Context, q TrendQuery) (types.Trend, error) {
	if q.Role == "" {
		q.Role = model.Shooter
	}
	if err := q.Window.validate(); err != nil {
		return types.Trend{}, err
	}
	v, err := s.open(ctx, q.Team, q.Window)
	if err != nil {
		return types.Trend{}, err
	}
	params := append([]string{
		q.Entity, string(q.Role), string(q.Bucket), string(q.Metric), string(q.Fill),
		outcomeKey(q.Outcomes), strconv.FormatBool(q.Weighted),
		outcomeKey(q.Numerator), outcomeKey(q.Denominator),
	}, q.Window.params()...)

	out, err := memo(ctx, s, v, "trend", params, func() (types.Trend, error) {
		ref := v.ref
		tq := trend.Query{
			Entity:    q.Entity,
			Role:      q.Role,
			Bucket:    q.Bucket,
			Metric:    q.Metric,
			Fill:      q.Fill,
			Outcomes:  q.Outcomes,
			Points:    s.points(q.Role),
			Rate:      s.rate,
			Reference: ref,
			Ratio:     s.ratioSpec(q.Role, q.Weighted, ref, nil, q.Numerator, q.Denominator),
			From:      q.From,
			To:        q.To,
		}
		points, err := trend.Build(v.snap.Events, tq)
		if err != nil {
			return types.Trend{}, err
		}
		res := types.Trend{
			Entity: q.Entity,
			Role:   string(q.Role),
			Bucket: string(orDefault(q.Bucket, trend.Month)),
			Metric: string(orDefault(q.Metric, trend.Count)),
			Fill:   string(orDefault(q.Fill, trend.FillOmit)),
			Points: make([]types.TrendPoint, len(points)),
		}
		for i, p := range points {
			res.Points[i] = types.TrendPoint{
				Period: p.Label,
				Start:  types.Date(p.Period),
				Value:  types.Float(p.Value, p.Defined),
				Count:  p.Count,
			}
		}
		return res, nil
	})
	if err != nil {
		return types.Trend{}, err
	}
	out.Meta = v.meta()
	return out, nil
}

// DistributionQuery selects a categorical breakdown.
type DistributionQuery struct {
	Team     string
	Entity   string
	Role     model.Role
	Field    distribution.Field
	Outcome  model.Outcome
	ZeroFill bool
	Window
}

// Distribution counts the events selected by q per category value.
func (s *Service) Distribution(ctx context.Context, q DistributionQuery) (types.Distribution, error) {
	if q.Role == "" {
		q.Role = model.Shooter
	}
	if q.Field == "" {
		q.Field = distribution.Zone
	}
	if err := q.Window.validate(); err != nil {
		return types.Distribution{}, err
	}
	v, err := s.open(ctx, q.Team, q.Window)
	if err != nil {
		return types.Distribution{}, err
	}
	params := append([]string{
		q.Entity, string(q.Role), string(q.Field), string(q.Outcome), strconv.FormatBool(q.ZeroFill),
	}, q.Window.params()...)

	out, err := memo(ctx, s, v, "distribution", params, func() (types.Distribution, error) {
		counts, err := distribution.Build(v.snap.Events, distribution.Query{
			Entity:   q.Entity,
			Role:     q.Role,
			Field:    q.Field,
			Outcome:  q.Outcome,
			ZeroFill: q.ZeroFill,
			From:     q.From,
			To:       q.To,
		})
		if err != nil {
			return types.Distribution{}, err
		}
		return types.Distribution{
			Entity:  q.Entity,
			Role:    string(q.Role),
			Field:   string(q.Field),
			Outcome: string(q.Outcome),
			Total:   distribution.Total(counts),
			Counts:  counts,
			Shares:  distribution.Shares(counts),
		}, nil
	})
	if err != nil {
		return types.Distribution{}, err
	}
	out.Meta = v.meta()
	return out, nil
}

// Records returns the superlatives of a team's events inside w.
func (s *Service) Records(ctx context.Context, team string, w Window) (types.Records, error) {
	if err := w.validate(); err != nil {
		return types.Records{}, err
	}
	v, err := s.open(ctx, team, w)
	if err != nil {
		return types.Records{}, err
	}
	out, err := memo(ctx, s, v, "records", w.params(), func() (types.Records, error) {
		events := model.Filter(v.snap.Events, w.From, w.To)
		var r types.Records
		if sess, ok := ranking.MostInSession(events, model.Shooter, model.Goal); ok {
			r.MostGoalsInSession = sessionRecord(sess)
		}
		if sess, ok := ranking.MostInSession(events, model.Keeper, model.Saved); ok {
			r.MostSavesInSession = sessionRecord(sess)
		}
		r.LongestGoalStreak = holdersRecord(ranking.LongestGoalStreak(events))
		r.MostSessions = holdersRecord(ranking.MostSessions(events))
		r.FewestSessions = holdersRecord(ranking.FewestSessions(events))
		if d, ok := ranking.BusiestDay(events); ok {
			r.BusiestDay = &types.DayRecord{Date: types.Date(d.Date), Count: d.Count}
		}
		if rv, ok := ranking.BiggestRivalry(events); ok {
			r.BiggestRivalry = &types.RivalryRecord{Shooter: rv.Shooter, Keeper: rv.Keeper, Encounters: rv.Encounters}
		}
		return r, nil
	})
	if err != nil {
		return types.Records{}, err
	}
	out.Meta = v.meta()
	return out, nil
}

// Recent returns a team's newest n penalties, newest first.
func (s *Service) Recent(ctx context.Context, team string, n int) (types.Recent, error) {
	v, err := s.open(ctx, team, Window{})
	if err != nil {
		return types.Recent{}, err
	}
	if n <= 0 {
		n = s.defaultTopN
	}
	if n > s.maxTopN {
		n = s.maxTopN
	}
	events := ranking.Recent(v.snap.Events, n)
	out := types.Recent{Meta: v.meta(), Penalties: make([]types.Penalty, len(events))}
	for i, e := range events {
		out.Penalties[i] = penalty(e)
	}
	return out, nil
}

// OverviewQuery restricts the overview to the last N units before the
// newest event, or to an explicit window when Last is zero.
type OverviewQuery struct {
	Team string
	Last int
	Unit string
	Window
}

// Overview summarizes the events selected by q.
func (s *Service) Overview(ctx context.Context, q OverviewQuery) (types.Overview, error) {
	v, err := s.open(ctx, q.Team, q.Window)
	if err != nil {
		return types.Overview{}, err
	}
	w := q.Window
	if q.Last > 0 {
		anchor := v.snap.Latest
		if anchor.IsZero() {
			anchor = v.ref
		}
		if w, err = LastWindow(q.Last, q.Unit, anchor); err != nil {
			return types.Overview{}, err
		}
		if v.ref, err = s.referenceDate(v.snap, w); err != nil {
			return types.Overview{}, err
		}
	}
	if err := w.validate(); err != nil {
		return types.Overview{}, err
	}

	out, err := memo(ctx, s, v, "overview", w.params(), func() (types.Overview, error) {
		events := model.Filter(v.snap.Events, w.From, w.To)
		outcomes, err := distribution.Build(events, distribution.Query{Field: distribution.Outcome, ZeroFill: true})
		if err != nil {
			return types.Overview{}, err
		}
		rate, err := ratio.Pooled(events, ratio.GoalRate())
		if err != nil {
			return types.Overview{}, err
		}
		shooters, keepers := make(map[string]struct{}), make(map[string]struct{})
		for _, e := range events {
			shooters[e.Shooter] = struct{}{}
			keepers[e.Keeper] = struct{}{}
		}
		return types.Overview{
			From:     types.Date(w.From),
			To:       types.Date(w.To),
			Total:    len(events),
			Outcomes: outcomes,
			GoalRate: types.Float(rate.Ratio, rate.Defined),
			Shooters: len(shooters),
			Keepers:  len(keepers),
		}, nil
	})
	if err != nil {
		return types.Overview{}, err
	}
	out.Meta = v.meta()
	return out, nil
}

func (s *Service) points(role model.Role) scoring.PointMap {
	if role == model.Keeper {
		return s.keeperPoints
	}
	return s.shooterPoints
}

func (s *Service) ratioSpec(role model.Role, weighted bool, ref time.Time, universe []string, num, den []model.Outcome) ratio.Spec {
	spec := ratio.GoalRate()
	if role == model.Keeper {
		spec = ratio.SaveRate()
	}
	if num != nil {
		spec.Numerator = num
	}
	if den != nil {
		spec.Denominator = den
	}
	spec.Weighted = weighted
	spec.Rate = s.rate
	spec.Reference = ref
	spec.Universe = universe
	return spec
}

// outcomeKey renders an outcome list in a stable order.
func outcomeKey(os []model.Outcome) string {
	return strings.Join(outcomeNames(os), ",")
}

// outcomeNames returns the sorted names of os, or nil when os is empty.
func outcomeNames(os []model.Outcome) []string {
	if len(os) == 0 {
		return nil
	}
	out := make([]string, len(os))
	for i, o := range os {
		out[i] = string(o)
	}
	sort.Strings(out)
	return out
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

func sessionRecord(s ranking.Session) *types.SessionRecord {
	return &types.SessionRecord{ID: s.ID, Date: types.Date(s.Date), Count: s.Count}
}

func holdersRecord(h ranking.Holders) types.HoldersRecord {
	ids := h.IDs
	if ids == nil {
		ids = []string{}
	}
	return types.HoldersRecord{IDs: ids, Value: h.Value}
}

func penalty(e model.Event) types.Penalty {
	return types.Penalty{
		Date:    types.Date(e.Date),
		Shooter: e.Shooter,
		Keeper:  e.Keeper,
		Outcome: string(e.Outcome),
		Zone:    string(e.Zone),
	}
}
