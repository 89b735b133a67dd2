package ranking

import (
	"sort"
	"time"

	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/internal/domain/trend"
)

// Holders is a superlative shared by every entity that reached it.
type Holders struct {
	IDs   []string
	Value int
}

// Session is the best single-day tally of one entity.
type Session struct {
	ID    string
	Date  time.Time
	Count int
}

// Day is a calendar day with its event count.
type Day struct {
	Date  time.Time
	Count int
}

// Rivalry is the shooter and keeper pair that met most often.
type Rivalry struct {
	Shooter    string
	Keeper     string
	Encounters int
}

// MostInSession returns the entity with the most outcome events on a single
// day, attributed by role. ok is false when no event matches.
func MostInSession(events []model.Event, role model.Role, outcome model.Outcome) (Session, bool) {
	c, ok := Max(Table(events, role, trend.Day, outcome), IDAsc)
	if !ok {
		return Session{}, false
	}
	return Session{ID: c.ID, Date: c.Period, Count: int(c.Value)}, true
}

// LongestGoalStreak finds the longest run of consecutive goals by any shooter
// in log order. Every shooter reaching the maximum is returned, sorted.
func LongestGoalStreak(events []model.Event) Holders {
	current := make(map[string]int)
	best := make(map[string]int)
	for _, e := range events {
		if e.Outcome != model.Goal {
			current[e.Shooter] = 0
			continue
		}
		current[e.Shooter]++
		if current[e.Shooter] > best[e.Shooter] {
			best[e.Shooter] = current[e.Shooter]
		}
	}
	return extreme(best, func(a, b int) bool { return a > b })
}

// Sessions counts the distinct days each actor of role took part in.
func Sessions(events []model.Event, role model.Role) map[string]int {
	days := make(map[string]map[time.Time]struct{})
	for _, e := range events {
		id := role.Actor(e)
		if days[id] == nil {
			days[id] = make(map[time.Time]struct{})
		}
		days[id][e.Date] = struct{}{}
	}
	out := make(map[string]int, len(days))
	for id, d := range days {
		out[id] = len(d)
	}
	return out
}

// MostSessions returns the shooters present on the most distinct days.
func MostSessions(events []model.Event) Holders {
	return extreme(Sessions(events, model.Shooter), func(a, b int) bool { return a > b })
}

// FewestSessions returns the shooters present on the fewest distinct days.
func FewestSessions(events []model.Event) Holders {
	return extreme(Sessions(events, model.Shooter), func(a, b int) bool { return a < b })
}

func extreme(values map[string]int, better func(a, b int) bool) Holders {
	var h Holders
	for id, v := range values {
		if v <= 0 {
			continue
		}
		switch {
		case len(h.IDs) == 0 || better(v, h.Value):
			h = Holders{IDs: []string{id}, Value: v}
		case v == h.Value:
			h.IDs = append(h.IDs, id)
		}
	}
	sort.Strings(h.IDs)
	if h.IDs == nil {
		h.IDs = []string{}
	}
	return h
}

// BusiestDay returns the day with the most events; ties go to the earliest.
func BusiestDay(events []model.Event) (Day, bool) {
	counts := make(map[time.Time]int)
	for _, e := range events {
		counts[e.Date]++
	}
	var best Day
	for d, n := range counts {
		if n > best.Count || (n == best.Count && d.Before(best.Date)) {
			best = Day{Date: d, Count: n}
		}
	}
	return best, best.Count > 0
}

// BiggestRivalry returns the most frequent shooter and keeper pair; ties go
// to the smaller shooter, then keeper.
func BiggestRivalry(events []model.Event) (Rivalry, bool) {
	type pair struct{ shooter, keeper string }
	counts := make(map[pair]int)
	for _, e := range events {
		counts[pair{e.Shooter, e.Keeper}]++
	}
	var best Rivalry
	for p, n := range counts {
		switch {
		case n > best.Encounters:
		case n < best.Encounters:
			continue
		case p.shooter > best.Shooter:
			continue
		case p.shooter == best.Shooter && p.keeper > best.Keeper:
			continue
		}
		best = Rivalry{Shooter: p.shooter, Keeper: p.keeper, Encounters: n}
	}
	return best, best.Encounters > 0
}

// Recent returns the last n events of the log, newest first.
func Recent(events []model.Event, n int) []model.Event {
	if n <= 0 || n > len(events) {
		n = len(events)
	}
	out := make([]model.Event, 0, n)
	for i := len(events) - 1; i >= len(events)-n; i-- {
		out = append(out, events[i])
	}
	return out
}
