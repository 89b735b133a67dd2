// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/penalty/internal/domain/decay"
	"github.com/okian/penalty/internal/domain/scoring"
)

// Reference date keywords.
const (
	ReferenceNow    = "now"
	ReferenceLatest = "latest"
)

// DefaultHalfLifeDays is the decay half-life used when none is configured.
const DefaultHalfLifeDays = 45

// DefaultTeam names the single team built from PrimarySource and
// FallbackSource when no teams are configured.
const DefaultTeam = "default"

// Source is one team's pair of event log locations.
type Source struct {
	Primary  string `koanf:"primary"`
	Fallback string `koanf:"fallback"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// PrimarySource and FallbackSource are file paths or http(s) URLs of CSV logs.
	PrimarySource   string `koanf:"primary_source"`
	FallbackSource  string `koanf:"fallback_source"`
	SourceTimeoutMS int    `koanf:"source_timeout_ms"`

	// Teams gives each team its own log, e.g. separate men's and women's
	// squads. When empty, PrimarySource and FallbackSource form DefaultTeam.
	Teams map[string]Source `koanf:"teams"`
	// DefaultTeam answers requests without a team parameter. Empty picks
	// DefaultTeam, or the first team by name when Teams is set.
	DefaultTeam string `koanf:"default_team"`

	// DecayRate wins over HalfLifeDays when set.
	DecayRate    float64 `koanf:"decay_rate"`
	HalfLifeDays float64 `koanf:"half_life_days"`

	PointMapShooter map[string]float64 `koanf:"point_map_shooter"`
	PointMapKeeper  map[string]float64 `koanf:"point_map_keeper"`

	// DefaultTopN applies when a request has no limit; MaxTopN caps it.
	DefaultTopN int `koanf:"default_top_n"`
	MaxTopN     int `koanf:"max_top_n"`

	// ReferenceDate is "", "now", "latest" or YYYY-MM-DD.
	ReferenceDate string `koanf:"reference_date"`

	// CacheSize bounds the in-memory result cache; 0 disables it.
	CacheSize int `koanf:"cache_size"`
	CacheTTLS int `koanf:"cache_ttl_s"`

	// RedisAddr enables the shared Redis result cache when set.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// RefreshIntervalS reloads the sources periodically; 0 disables it.
	RefreshIntervalS int `koanf:"refresh_interval_s"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		PrimarySource:   "data/penalty.csv",
		FallbackSource:  "data/pseudo_penalty.csv",
		SourceTimeoutMS: 5000,
		HalfLifeDays:    DefaultHalfLifeDays,
		PointMapShooter: map[string]float64{"goal": 1.5, "saved": 0, "out": -1},
		PointMapKeeper:  map[string]float64{"goal": -1, "saved": 1.5, "out": 0},
		DefaultTopN:     10,
		MaxTopN:         100,
		ReferenceDate:   ReferenceNow,
		CacheSize:       512,
		CacheTTLS:       300,
	}
}

// Sources returns the event log locations of every team.
func (c *Config) Sources() map[string]Source {
	if len(c.Teams) == 0 {
		return map[string]Source{DefaultTeam: {Primary: c.PrimarySource, Fallback: c.FallbackSource}}
	}
	out := make(map[string]Source, len(c.Teams))
	for name, src := range c.Teams {
		out[strings.TrimSpace(name)] = Source{Primary: strings.TrimSpace(src.Primary), Fallback: strings.TrimSpace(src.Fallback)}
	}
	return out
}

// DefaultTeamName resolves which team serves requests that name none.
func (c *Config) DefaultTeamName() string {
	if name := strings.TrimSpace(c.DefaultTeam); name != "" {
		return name
	}
	if len(c.Teams) == 0 {
		return DefaultTeam
	}
	names := make([]string, 0, len(c.Teams))
	for name := range c.Sources() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}

// Rate resolves the decay rate from DecayRate or HalfLifeDays.
func (c *Config) Rate() (float64, error) {
	if c.DecayRate != 0 {
		if err := decay.ValidateRate(c.DecayRate); err != nil {
			return 0, err
		}
		return c.DecayRate, nil
	}
	return decay.RateFromHalfLife(c.HalfLifeDays)
}

// ShooterPoints parses PointMapShooter.
func (c *Config) ShooterPoints() (scoring.PointMap, error) {
	return scoring.ParsePointMap(c.PointMapShooter)
}

// KeeperPoints parses PointMapKeeper.
func (c *Config) KeeperPoints() (scoring.PointMap, error) {
	return scoring.ParsePointMap(c.PointMapKeeper)
}

// SourceTimeout returns the per-load timeout.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutMS) * time.Millisecond
}

// CacheTTL returns the result cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLS) * time.Second
}

// RefreshInterval returns the reload period, zero when disabled.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalS) * time.Second
}

// ResolveReference turns ReferenceDate into a date. latest is the newest
// event date and is used for "latest"; it falls back to now when zero.
func (c *Config) ResolveReference(now, latest time.Time) (time.Time, error) {
	return ResolveReference(c.ReferenceDate, now, latest)
}

// ResolveReference interprets a reference date setting or query parameter.
func ResolveReference(value string, now, latest time.Time) (time.Time, error) {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case "", ReferenceNow:
		return now, nil
	case ReferenceLatest:
		if latest.IsZero() {
			return now, nil
		}
		return latest, nil
	default:
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: reference_date %q", ErrInvalidConfig, value)
		}
		return t, nil
	}
}

// Validate checks every setting and returns the first problem wrapped in
// ErrInvalidConfig.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	sources := c.Sources()
	for name, src := range sources {
		if name == "" {
			return fmt.Errorf("%w: team names must not be empty", ErrInvalidConfig)
		}
		if strings.TrimSpace(src.Primary) == "" && strings.TrimSpace(src.Fallback) == "" {
			return fmt.Errorf("%w: no event source configured for team %q", ErrInvalidConfig, name)
		}
	}
	if _, ok := sources[c.DefaultTeamName()]; !ok {
		return fmt.Errorf("%w: default_team %q is not a configured team", ErrInvalidConfig, c.DefaultTeam)
	}
	if _, err := c.Rate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.ShooterPoints(); err != nil {
		return fmt.Errorf("%w: point_map_shooter: %w", ErrInvalidConfig, err)
	}
	if _, err := c.KeeperPoints(); err != nil {
		return fmt.Errorf("%w: point_map_keeper: %w", ErrInvalidConfig, err)
	}
	if c.DefaultTopN < 1 || c.MaxTopN < c.DefaultTopN {
		return fmt.Errorf("%w: need 1 <= default_top_n (%d) <= max_top_n (%d)", ErrInvalidConfig, c.DefaultTopN, c.MaxTopN)
	}
	if _, err := c.ResolveReference(time.Now(), time.Time{}); err != nil {
		return err
	}
	if c.CacheSize < 0 || c.CacheTTLS < 0 || c.RefreshIntervalS < 0 || c.SourceTimeoutMS < 0 {
		return fmt.Errorf("%w: sizes and intervals must not be negative", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
