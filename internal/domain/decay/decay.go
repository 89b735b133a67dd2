// Package decay converts event dates into exponential recency weights.
package decay

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/penalty/internal/domain/model"
)

const hoursPerDay = 24

// DaysAgo returns the whole calendar days between date and reference.
// Dates after the reference count as zero days ago.
func DaysAgo(date, reference time.Time) int {
	d := int(model.Day(reference).Sub(model.Day(date)).Hours() / hoursPerDay)
	if d < 0 {
		return 0
	}
	return d
}

// Weight returns exp(-rate*days). It is exactly 1 for events on or after the
// reference day and never increases as events get older. Results that would
// underflow to zero are held at the smallest positive float64, so every event
// keeps a weight in (0,1].
func Weight(date, reference time.Time, rate float64) float64 {
	days := DaysAgo(date, reference)
	if days == 0 {
		return 1
	}
	if w := math.Exp(-rate * float64(days)); w > 0 {
		return w
	}
	return math.SmallestNonzeroFloat64
}

// RateFromHalfLife returns the rate at which a weight halves every halfLife days.
func RateFromHalfLife(halfLife float64) (float64, error) {
	if halfLife <= 0 || math.IsNaN(halfLife) || math.IsInf(halfLife, 0) {
		return 0, fmt.Errorf("%w: half-life %v", ErrInvalidRate, halfLife)
	}
	return math.Ln2 / halfLife, nil
}

// ValidateRate rejects non-positive and non-finite rates.
func ValidateRate(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	return nil
}

// Check reports ErrIntegrity when w is outside (0,1].
func Check(w float64) error {
	if math.IsNaN(w) || w <= 0 || w > 1 {
		return fmt.Errorf("%w: weight %v", ErrIntegrity, w)
	}
	return nil
}

// Weigher attaches weights relative to a fixed reference date.
type Weigher struct {
	Rate      float64
	Reference time.Time
}

// New validates rate and returns a Weigher anchored at reference.
func New(rate float64, reference time.Time) (Weigher, error) {
	if err := ValidateRate(rate); err != nil {
		return Weigher{}, err
	}
	return Weigher{Rate: rate, Reference: model.Day(reference)}, nil
}

// Of returns the checked weight of e.
func (w Weigher) Of(e model.Event) (float64, error) {
	v := Weight(e.Date, w.Reference, w.Rate)
	if err := Check(v); err != nil {
		return 0, fmt.Errorf("shooter %s vs keeper %s on %s: %w", e.Shooter, e.Keeper, e.Date.Format(time.DateOnly), err)
	}
	return v, nil
}
