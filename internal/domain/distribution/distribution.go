// Package distribution counts events per categorical value.
package distribution

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/penalty/internal/domain/model"
)

// Unspecified is the category for events recorded without a zone.
const Unspecified = "unspecified"

// Field is the categorical attribute being counted.
type Field string

// Fields.
const (
	Zone    Field = "zone"
	Outcome Field = "outcome"
)

// ParseField accepts a field name; empty means Zone.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zone", "position", "shoot_position":
		return Zone, nil
	case "outcome", "status":
		return Outcome, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidField, s)
}

// Domain returns the fixed category values of f.
func Domain(f Field) []string {
	var out []string
	switch f {
	case Outcome:
		for _, o := range model.Outcomes() {
			out = append(out, string(o))
		}
	default:
		for _, z := range model.Zones() {
			out = append(out, string(z))
		}
	}
	return out
}

// Query filters and shapes a distribution. An empty Entity selects every
// event; an empty Outcome keeps every outcome.
type Query struct {
	Entity   string
	Role     model.Role
	Field    Field
	Outcome  model.Outcome
	ZeroFill bool
	From, To time.Time
}

// Build counts filtered events per category value. The result is sparse
// unless ZeroFill is set.
func Build(events []model.Event, q Query) (map[string]int, error) {
	if q.Role == "" {
		q.Role = model.Shooter
	}
	if q.Field == "" {
		q.Field = Zone
	}
	if _, err := ParseField(string(q.Field)); err != nil {
		return nil, err
	}
	if q.Outcome != "" && !q.Outcome.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidOutcome, q.Outcome)
	}

	out := make(map[string]int)
	for _, e := range model.Filter(events, q.From, q.To) {
		if q.Entity != "" && q.Role.Actor(e) != q.Entity {
			continue
		}
		if q.Outcome != "" && e.Outcome != q.Outcome {
			continue
		}
		out[category(e, q.Field)]++
	}
	if q.ZeroFill {
		for _, v := range Domain(q.Field) {
			if _, ok := out[v]; !ok {
				out[v] = 0
			}
		}
	}
	return out, nil
}

func category(e model.Event, f Field) string {
	if f == Outcome {
		return string(e.Outcome)
	}
	if e.Zone == model.ZoneUnspecified {
		return Unspecified
	}
	return string(e.Zone)
}

// Total sums every count.
func Total(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

// Shares converts counts into fractions of their total. An empty or all-zero
// distribution yields an empty map.
func Shares(counts map[string]int) map[string]float64 {
	total := Total(counts)
	out := make(map[string]float64, len(counts))
	if total == 0 {
		return out
	}
	for k, c := range counts {
		out[k] = float64(c) / float64(total)
	}
	return out
}
