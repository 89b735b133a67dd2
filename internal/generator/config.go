package generator

import (
	"fmt"
	"time"
)

// Config holds configuration for a synthetic log.
type Config struct {
	Start    time.Time // first candidate day
	End      time.Time // last candidate day, inclusive
	PerDay   int       // penalties per shooter per session day
	Shooters []string
	Keepers  []string
	Seed     uint64 // identical seeds produce identical logs
}

// DefaultConfig covers the current calendar year with the default squad.
func DefaultConfig(now time.Time) Config {
	y := now.UTC().Year()
	return Config{
		Start:    time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(y, 12, 31, 0, 0, 0, 0, time.UTC),
		PerDay:   defaultPerDay,
		Shooters: append([]string(nil), defaultShooters...),
		Keepers:  append([]string(nil), defaultKeepers...),
		Seed:     uint64(now.UnixNano()),
	}
}

func (c Config) validate() error {
	switch {
	case c.Start.IsZero() || c.End.IsZero():
		return fmt.Errorf("%w: start and end are required", ErrInvalidConfig)
	case c.End.Before(c.Start):
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidConfig, c.End.Format(time.DateOnly), c.Start.Format(time.DateOnly))
	case c.PerDay < 1:
		return fmt.Errorf("%w: per-day must be at least 1", ErrInvalidConfig)
	case len(c.Shooters) == 0 || len(c.Keepers) == 0:
		return fmt.Errorf("%w: need at least one shooter and one keeper", ErrInvalidConfig)
	}
	return nil
}
