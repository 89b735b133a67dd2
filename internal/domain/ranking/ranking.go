// Package ranking orders scored entities and extracts superlative records.
package ranking

import (
	"fmt"
	"sort"
	"strings"
)

// TieBreak orders entities whose values are equal.
type TieBreak int

const (
	// IDAsc puts the lexicographically smaller id first.
	IDAsc TieBreak = iota
	// IDDesc puts the lexicographically larger id first.
	IDDesc
)

// ParseTieBreak accepts "asc"/"id_asc" and "desc"/"id_desc"; empty means IDAsc.
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "id_asc", "id-asc":
		return IDAsc, nil
	case "desc", "id_desc", "id-desc":
		return IDDesc, nil
	}
	return IDAsc, fmt.Errorf("%w: %q", ErrInvalidTieBreak, s)
}

func (tb TieBreak) before(a, b string) bool {
	if tb == IDDesc {
		return a > b
	}
	return a < b
}

// Item is an entity with its ranking value.
type Item struct {
	ID    string
	Value float64
}

// Ranked is an Item with its 1-based rank. Equal values share a rank.
type Ranked struct {
	Rank  int
	ID    string
	Value float64
}

// FromMap converts id -> value into items.
func FromMap(m map[string]float64) []Item {
	out := make([]Item, 0, len(m))
	for id, v := range m {
		out = append(out, Item{ID: id, Value: v})
	}
	return out
}

// Sort returns a copy of items ordered by value desc, then by tb.
func Sort(items []Item, tb TieBreak) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return tb.before(out[i].ID, out[j].ID)
	})
	return out
}

// All ranks every item. Ranks are consecutive: equal values share a rank and
// the next distinct value gets the following one.
func All(items []Item, tb TieBreak) []Ranked {
	sorted := Sort(items, tb)
	out := make([]Ranked, len(sorted))
	rank := 0
	for i, it := range sorted {
		if i == 0 || it.Value != sorted[i-1].Value {
			rank++
		}
		out[i] = Ranked{Rank: rank, ID: it.ID, Value: it.Value}
	}
	return out
}

// TopN returns the first n ranked items. n <= 0 or n beyond the input returns
// every item.
func TopN(items []Item, n int, tb TieBreak) []Ranked {
	all := All(items, tb)
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[:n]
}

// Position finds id in the ranking.
func Position(items []Item, id string, tb TieBreak) (Ranked, bool) {
	for _, r := range All(items, tb) {
		if r.ID == id {
			return r, true
		}
	}
	return Ranked{}, false
}

// IDs returns the ids of ranked in order.
func IDs(ranked []Ranked) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.ID
	}
	return out
}
