package ranking

import (
	"sort"
	"time"

	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/internal/domain/trend"
)

// Cell is one entity's value in one period.
type Cell struct {
	Period time.Time
	ID     string
	Value  float64
}

// Table counts events per period per actor of role. An empty outcome counts
// every event. Cells are ordered by period, then id.
func Table(events []model.Event, role model.Role, bucket trend.Bucket, outcome model.Outcome) []Cell {
	type key struct {
		period time.Time
		id     string
	}
	counts := make(map[key]float64)
	for _, e := range events {
		if outcome != "" && e.Outcome != outcome {
			continue
		}
		counts[key{bucket.Truncate(e.Date), role.Actor(e)}]++
	}
	out := make([]Cell, 0, len(counts))
	for k, v := range counts {
		out = append(out, Cell{Period: k.period, ID: k.id, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Period.Equal(out[j].Period) {
			return out[i].Period.Before(out[j].Period)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Max returns the largest cell in one pass. Ties go to the id preferred by
// tb, then to the earliest period.
func Max(cells []Cell, tb TieBreak) (Cell, bool) {
	return scan(cells, tb, func(a, b float64) bool { return a > b })
}

// Min returns the smallest cell with the same tie discipline as Max.
func Min(cells []Cell, tb TieBreak) (Cell, bool) {
	return scan(cells, tb, func(a, b float64) bool { return a < b })
}

func scan(cells []Cell, tb TieBreak, better func(a, b float64) bool) (Cell, bool) {
	if len(cells) == 0 {
		return Cell{}, false
	}
	best := cells[0]
	for _, c := range cells[1:] {
		switch {
		case better(c.Value, best.Value):
			best = c
		case c.Value != best.Value:
		case c.ID != best.ID:
			if tb.before(c.ID, best.ID) {
				best = c
			}
		case c.Period.Before(best.Period):
			best = c
		}
	}
	return best, true
}
