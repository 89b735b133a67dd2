// Package model contains the validated domain records passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the closed set of penalty results.
type Outcome string

// Recognized outcomes.
const (
	Goal  Outcome = "goal"
	Saved Outcome = "saved"
	Out   Outcome = "out"
)

// Outcomes lists every recognized outcome in display order.
func Outcomes() []Outcome { return []Outcome{Goal, Saved, Out} }

// ParseOutcome accepts an outcome case-insensitively.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
	return o, nil
}

// Valid reports whether o is a recognized outcome.
func (o Outcome) Valid() bool {
	switch o {
	case Goal, Saved, Out:
		return true
	}
	return false
}

// Zone is the aim position of a shot inside the goal.
type Zone string

// Recognized zones. ZoneUnspecified marks events recorded without one.
const (
	TopLeft         Zone = "top-left"
	TopRight        Zone = "top-right"
	BottomLeft      Zone = "bottom-left"
	BottomRight     Zone = "bottom-right"
	CenterLeft      Zone = "center-left"
	CenterRight     Zone = "center-right"
	CenterTop       Zone = "center-top"
	CenterBottom    Zone = "center-bottom"
	ZoneUnspecified Zone = ""
)

// Zones lists the fixed zone domain.
func Zones() []Zone {
	return []Zone{TopLeft, TopRight, BottomLeft, BottomRight, CenterLeft, CenterRight, CenterTop, CenterBottom}
}

// ParseZone accepts a zone case-insensitively; spaces and underscores are
// read as hyphens. An empty string yields ZoneUnspecified.
func ParseZone(s string) (Zone, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	if norm == "" {
		return ZoneUnspecified, nil
	}
	z := Zone(norm)
	for _, known := range Zones() {
		if z == known {
			return z, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidZone, s)
}

// Role selects which participant of an event an aggregation is keyed by.
type Role string

// Roles.
const (
	Shooter Role = "shooter"
	Keeper  Role = "keeper"
)

// ParseRole accepts "shooter"/"player" and "keeper"/"goalkeeper".
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shooter", "shooters", "player", "players":
		return Shooter, nil
	case "keeper", "keepers", "goalkeeper", "goalkeepers":
		return Keeper, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Actor returns the entity e is attributed to under r. Every event has
// exactly one actor per role.
func (r Role) Actor(e Event) string {
	if r == Keeper {
		return e.Keeper
	}
	return e.Shooter
}

// Opponent returns the other participant of e under r.
func (r Role) Opponent(e Event) string {
	if r == Keeper {
		return e.Shooter
	}
	return e.Keeper
}

// Event is one recorded penalty. Construct it with NewEvent; the zero value
// is not a valid event.
type Event struct {
	Date    time.Time // UTC midnight of the session day
	Shooter string
	Keeper  string
	Outcome Outcome
	Zone    Zone
}

// NewEvent validates its arguments and returns an Event. date is truncated to
// its UTC calendar day.
func NewEvent(date time.Time, shooter, keeper string, outcome Outcome, zone Zone) (Event, error) {
	switch {
	case date.IsZero():
		return Event{}, fmt.Errorf("%w: date", ErrMissingField)
	case shooter == "":
		return Event{}, fmt.Errorf("%w: shooter", ErrMissingField)
	case keeper == "":
		return Event{}, fmt.Errorf("%w: keeper", ErrMissingField)
	case !outcome.Valid():
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}
	if zone != ZoneUnspecified {
		if _, err := ParseZone(string(zone)); err != nil {
			return Event{}, err
		}
	}
	return Event{
		Date:    Day(date),
		Shooter: shooter,
		Keeper:  keeper,
		Outcome: outcome,
		Zone:    zone,
	}, nil
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Between reports whether e falls inside [from, to]. Zero bounds are open.
func (e Event) Between(from, to time.Time) bool {
	if !from.IsZero() && e.Date.Before(Day(from)) {
		return false
	}
	if !to.IsZero() && e.Date.After(Day(to)) {
		return false
	}
	return true
}

// Filter returns the events inside [from, to]. The input is not modified.
func Filter(events []Event, from, to time.Time) []Event {
	if from.IsZero() && to.IsZero() {
		return events
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Between(from, to) {
			out = append(out, e)
		}
	}
	return out
}
