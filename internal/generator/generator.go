// Package generator produces synthetic penalty logs for demos and the
// fallback source.
package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/pkg/logger"
)

type profile struct {
	outcomes []float64
	zones    []float64
}

// Generate builds a log from cfg. Each ISO week gets three or four session
// days; each session has one keeper and every shooter takes PerDay
// penalties drawn from that shooter's own outcome and zone weights.
func Generate(ctx context.Context, cfg Config) ([]model.Event, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data, not security sensitive

	profiles := make(map[string]profile, len(cfg.Shooters))
	for _, s := range cfg.Shooters {
		profiles[s] = profile{
			outcomes: outcomeProfiles[rng.IntN(len(outcomeProfiles))],
			zones:    zoneProfiles[rng.IntN(len(zoneProfiles))],
		}
	}

	days := sessionDays(model.Day(cfg.Start), model.Day(cfg.End), rng)
	outcomes, zones := model.Outcomes(), model.Zones()
	events := make([]model.Event, 0, len(days)*len(cfg.Shooters)*cfg.PerDay)
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}
		keeper := cfg.Keepers[rng.IntN(len(cfg.Keepers))]
		for _, shooter := range cfg.Shooters {
			p := profiles[shooter]
			for i := 0; i < cfg.PerDay; i++ {
				e, err := model.NewEvent(day, shooter, keeper, outcomes[pick(rng, p.outcomes)], zones[pick(rng, p.zones)])
				if err != nil {
					return nil, err
				}
				events = append(events, e)
			}
		}
	}

	logger.Get().Info(ctx, "generated synthetic log",
		logger.Int("days", len(days)),
		logger.Int("events", len(events)),
	)
	return events, nil
}

// sessionDays groups [start, end] by ISO week and draws three or four days
// from each week, returned in chronological order.
func sessionDays(start, end time.Time, rng *rand.Rand) []time.Time {
	type week struct{ year, num int }
	var order []week
	byWeek := make(map[week][]time.Time)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		y, n := d.ISOWeek()
		k := week{y, n}
		if _, ok := byWeek[k]; !ok {
			order = append(order, k)
		}
		byWeek[k] = append(byWeek[k], d)
	}

	var out []time.Time
	for _, k := range order {
		candidates := byWeek[k]
		n := minDaysPerWeek + rng.IntN(maxDaysPerWeek-minDaysPerWeek+1)
		if n > len(candidates) {
			n = len(candidates)
		}
		rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		out = append(out, candidates[:n]...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// pick returns an index drawn with the given weights.
func pick(rng *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	x := rng.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}
