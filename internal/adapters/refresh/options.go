package refresh

import (
	"time"

	"github.com/okian/penalty/pkg/logger"
)

// Option applies a configuration option to the Refresher.
type Option func(*Refresher)

// WithInterval sets how often the source is re-read. Zero disables the
// periodic loop; Reload still works.
func WithInterval(d time.Duration) Option {
	return func(r *Refresher) {
		if d >= 0 {
			r.interval = d
		}
	}
}

// WithPurger sets the cache invalidated when the log content changes.
func WithPurger(p Purger) Option {
	return func(r *Refresher) {
		if p != nil {
			r.purger = p
		}
	}
}

// WithLogger sets a custom logger for the refresher.
func WithLogger(lg logger.Logger) Option {
	return func(r *Refresher) {
		if lg != nil {
			r.logger = lg
		}
	}
}
