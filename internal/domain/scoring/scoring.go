// Package scoring reduces events to recency-weighted per-entity scores.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/penalty/internal/domain/decay"
	"github.com/okian/penalty/internal/domain/model"
)

// PointMap assigns points to each outcome. Outcomes missing from the map
// score zero.
type PointMap map[model.Outcome]float64

// DefaultShooterPoints rewards goals and penalizes shots off target.
func DefaultShooterPoints() PointMap {
	return PointMap{model.Goal: 1.5, model.Saved: 0, model.Out: -1}
}

// DefaultKeeperPoints rewards saves and penalizes conceded goals.
func DefaultKeeperPoints() PointMap {
	return PointMap{model.Goal: -1, model.Saved: 1.5, model.Out: 0}
}

// ParsePointMap converts a configuration map keyed by outcome name.
func ParsePointMap(raw map[string]float64) (PointMap, error) {
	pm := make(PointMap, len(raw))
	for k, v := range raw {
		o, err := model.ParseOutcome(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPointMap, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidPointMap, k, v)
		}
		pm[o] = v
	}
	return pm, nil
}

// ZeroPolicy controls how entities without events are reported.
type ZeroPolicy int

const (
	// ZeroOmit leaves entities without events out of the result.
	ZeroOmit ZeroPolicy = iota
	// ZeroFill reports every Universe member, with score 0 and count 0 when idle.
	ZeroFill
)

// Params configures one aggregation call.
type Params struct {
	Role      model.Role
	Points    PointMap
	Rate      float64
	Reference time.Time
	Zero      ZeroPolicy
	Universe  []string
}

// Entity is the per-query aggregate for one participant.
type Entity struct {
	ID        string
	Score     float64
	Count     int
	Weight    float64 // sum of decay weights
	ByOutcome map[model.Outcome]int
}

// Aggregate sums points[outcome]*weight per actor of p.Role. Each event is
// attributed to exactly one entity.
func Aggregate(events []model.Event, p Params) (map[string]Entity, error) {
	w, err := decay.New(p.Rate, p.Reference)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Entity)
	for _, e := range events {
		weight, err := w.Of(e)
		if err != nil {
			return nil, err
		}
		id := p.Role.Actor(e)
		ent, ok := out[id]
		if !ok {
			ent = Entity{ID: id, ByOutcome: make(map[model.Outcome]int, len(model.Outcomes()))}
		}
		ent.Score += p.Points[e.Outcome] * weight
		ent.Weight += weight
		ent.Count++
		ent.ByOutcome[e.Outcome]++
		out[id] = ent
	}
	if p.Zero == ZeroFill {
		for _, id := range p.Universe {
			if _, ok := out[id]; !ok {
				out[id] = Entity{ID: id, ByOutcome: map[model.Outcome]int{}}
			}
		}
	}
	return out, nil
}

// Contribution is the weighted points of a single event.
func Contribution(e model.Event, p Params) (float64, error) {
	w, err := decay.New(p.Rate, p.Reference)
	if err != nil {
		return 0, err
	}
	weight, err := w.Of(e)
	if err != nil {
		return 0, err
	}
	return p.Points[e.Outcome] * weight, nil
}

// Total sums the scores of all entities in ascending id order so the result
// does not depend on map iteration.
func Total(entities map[string]Entity) float64 {
	ids := make([]string, 0, len(entities))
	for id := range entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var sum float64
	for _, id := range ids {
		sum += entities[id].Score
	}
	return sum
}

// Scores flattens entities into id -> score.
func Scores(entities map[string]Entity) map[string]float64 {
	out := make(map[string]float64, len(entities))
	for id, e := range entities {
		out[id] = e.Score
	}
	return out
}
