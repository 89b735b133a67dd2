package trend

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/penalty/internal/domain/model"
)

// Bucket is a time granularity for grouping events.
type Bucket string

// Supported buckets. Weeks start on Monday (ISO 8601).
const (
	Day   Bucket = "day"
	Week  Bucket = "week"
	Month Bucket = "month"
	Year  Bucket = "year"
)

// ParseBucket accepts a bucket name case-insensitively; empty means Month.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return Month, nil
	case Day, Week, Month, Year:
		return b, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBucket, s)
}

// Truncate returns the start of the period containing t.
func (b Bucket) Truncate(t time.Time) time.Time {
	t = model.Day(t)
	switch b {
	case Week:
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset)
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Year:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// Next returns the start of the period after the one starting at start.
func (b Bucket) Next(start time.Time) time.Time {
	switch b {
	case Week:
		return start.AddDate(0, 0, 7)
	case Month:
		return start.AddDate(0, 1, 0)
	case Year:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// Label formats a period start for display.
func (b Bucket) Label(start time.Time) string {
	switch b {
	case Week:
		y, w := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case Month:
		return start.Format("2006-01")
	case Year:
		return start.Format("2006")
	default:
		return start.Format(time.DateOnly)
	}
}
