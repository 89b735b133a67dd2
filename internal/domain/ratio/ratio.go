// Package ratio computes per-entity outcome fractions, optionally decay weighted.
package ratio

import (
	"fmt"
	"time"

	"github.com/okian/penalty/internal/domain/decay"
	"github.com/okian/penalty/internal/domain/model"
)

// Spec describes a ratio. A nil Denominator means every outcome.
type Spec struct {
	Role        model.Role
	Numerator   []model.Outcome
	Denominator []model.Outcome
	Weighted    bool
	Rate        float64
	Reference   time.Time
	// Universe lists entities reported as undefined when they have no events.
	Universe []string
}

// GoalRate is the share of a shooter's attempts that went in.
func GoalRate() Spec {
	return Spec{Role: model.Shooter, Numerator: []model.Outcome{model.Goal}}
}

// SaveRate is the share of shots faced that a keeper saved.
func SaveRate() Spec {
	return Spec{Role: model.Keeper, Numerator: []model.Outcome{model.Saved}}
}

// Value is one entity's ratio. Ratio is meaningful only when Defined.
type Value struct {
	ID          string
	Ratio       float64
	Defined     bool
	Numerator   float64
	Denominator float64
	Count       int
}

type outcomeSet map[model.Outcome]bool

func newSet(os []model.Outcome) outcomeSet {
	if os == nil {
		return nil
	}
	s := make(outcomeSet, len(os))
	for _, o := range os {
		s[o] = true
	}
	return s
}

func (s outcomeSet) has(o model.Outcome) bool { return s == nil || s[o] }

// Compute returns num/den per actor of s.Role. Entities whose denominator is
// zero come back undefined. A result outside [0,1] is returned as
// decay.ErrIntegrity and never clamped.
func Compute(events []model.Event, s Spec) (map[string]Value, error) {
	var w decay.Weigher
	if s.Weighted {
		var err error
		if w, err = decay.New(s.Rate, s.Reference); err != nil {
			return nil, err
		}
	}
	num, den := newSet(s.Numerator), newSet(s.Denominator)
	if num == nil {
		num = outcomeSet{}
	}

	out := make(map[string]Value)
	for _, e := range events {
		id := s.Role.Actor(e)
		v := out[id]
		v.ID = id
		amount := 1.0
		if s.Weighted {
			var err error
			if amount, err = w.Of(e); err != nil {
				return nil, err
			}
		}
		if num.has(e.Outcome) {
			v.Numerator += amount
		}
		if den.has(e.Outcome) {
			v.Denominator += amount
			v.Count++
		}
		out[id] = v
	}
	for _, id := range s.Universe {
		if _, ok := out[id]; !ok {
			out[id] = Value{ID: id}
		}
	}

	for id, v := range out {
		if v.Denominator == 0 {
			v.Ratio, v.Defined = 0, false
			out[id] = v
			continue
		}
		v.Ratio, v.Defined = v.Numerator/v.Denominator, true
		if err := Check(v.Ratio); err != nil {
			return nil, fmt.Errorf("ratio for %s: %w", id, err)
		}
		out[id] = v
	}
	return out, nil
}

// Pooled returns a single ratio over every event regardless of entity.
func Pooled(events []model.Event, s Spec) (Value, error) {
	var w decay.Weigher
	if s.Weighted {
		var err error
		if w, err = decay.New(s.Rate, s.Reference); err != nil {
			return Value{}, err
		}
	}
	num, den := newSet(s.Numerator), newSet(s.Denominator)
	if num == nil {
		num = outcomeSet{}
	}
	var v Value
	for _, e := range events {
		amount := 1.0
		if s.Weighted {
			var err error
			if amount, err = w.Of(e); err != nil {
				return Value{}, err
			}
		}
		if num.has(e.Outcome) {
			v.Numerator += amount
		}
		if den.has(e.Outcome) {
			v.Denominator += amount
			v.Count++
		}
	}
	if v.Denominator == 0 {
		return v, nil
	}
	v.Ratio, v.Defined = v.Numerator/v.Denominator, true
	if err := Check(v.Ratio); err != nil {
		return Value{}, err
	}
	return v, nil
}

// Check reports decay.ErrIntegrity for ratios outside [0,1].
func Check(r float64) error {
	if !(r >= 0 && r <= 1) {
		return fmt.Errorf("%w: ratio %v", decay.ErrIntegrity, r)
	}
	return nil
}

// Adjusted shrinks each defined ratio toward the population mean:
// (p*n + m*C) / (n + C), where C is the mean denominator and m the mean ratio
// over defined entities. Entities with little data move most.
func Adjusted(values map[string]Value) map[string]Value {
	var sumDen, sumRatio float64
	defined := 0
	for _, v := range values {
		if v.Defined {
			sumDen += v.Denominator
			sumRatio += v.Ratio
			defined++
		}
	}
	out := make(map[string]Value, len(values))
	if defined == 0 {
		for id, v := range values {
			out[id] = v
		}
		return out
	}
	c := sumDen / float64(defined)
	m := sumRatio / float64(defined)
	for id, v := range values {
		if v.Defined {
			v.Ratio = (v.Ratio*v.Denominator + m*c) / (v.Denominator + c)
		}
		out[id] = v
	}
	return out
}

// Ranked keeps defined ratios only, ready for ranking.
func Ranked(values map[string]Value) map[string]float64 {
	out := make(map[string]float64, len(values))
	for id, v := range values {
		if v.Defined {
			out[id] = v.Ratio
		}
	}
	return out
}
