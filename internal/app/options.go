package service

import (
	"time"

	"github.com/okian/penalty/internal/adapters/cache"
	"github.com/okian/penalty/internal/adapters/refresh"
	"github.com/okian/penalty/internal/config"
	"github.com/okian/penalty/internal/domain/scoring"
	"github.com/okian/penalty/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLoader sets the event source of the default team.
func WithLoader(l refresh.Loader) Option {
	return WithTeam(config.DefaultTeam, l)
}

// WithTeam adds a team with its own event source. Each team is loaded and
// refreshed independently; cached results are keyed by team.
func WithTeam(name string, l refresh.Loader) Option {
	return func(s *Service) {
		if name == "" || l == nil {
			return
		}
		if s.loaders == nil {
			s.loaders = make(map[string]refresh.Loader)
		}
		s.loaders[name] = l
	}
}

// WithDefaultTeam selects the team that answers queries naming none.
// Unset picks config.DefaultTeam when registered, else the first team by name.
func WithDefaultTeam(name string) Option {
	return func(s *Service) {
		s.defaultTeam = name
	}
}

// WithCacheLayers sets the result cache layers, fastest first.
func WithCacheLayers(layers ...cache.Cache) Option {
	return func(s *Service) {
		s.layers = layers
	}
}

// WithRate sets the decay rate per day.
func WithRate(rate float64) Option {
	return func(s *Service) {
		if rate > 0 {
			s.rate = rate
		}
	}
}

// WithPoints sets the point maps used for shooter and keeper scores.
func WithPoints(shooter, keeper scoring.PointMap) Option {
	return func(s *Service) {
		if shooter != nil {
			s.shooterPoints = shooter
		}
		if keeper != nil {
			s.keeperPoints = keeper
		}
	}
}

// WithReference sets the reference date: "now", "latest" or YYYY-MM-DD.
func WithReference(ref string) Option {
	return func(s *Service) {
		s.reference = ref
	}
}

// WithTopN sets the default and maximum leaderboard sizes.
func WithTopN(def, maxN int) Option {
	return func(s *Service) {
		if def > 0 {
			s.defaultTopN = def
		}
		if maxN > 0 {
			s.maxTopN = maxN
		}
	}
}

// WithRefreshInterval enables periodic reloads of the source.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.refreshInterval = d
		}
	}
}

// WithClock overrides the time source used for the "now" reference.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(lg logger.Logger) Option {
	return func(s *Service) {
		if lg != nil {
			s.logger = lg
		}
	}
}
