package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/penalty/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars(t)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.HalfLifeDays, convey.ShouldEqual, 45)
				convey.So(cfg.CacheSize, convey.ShouldEqual, 512)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars(t)
			t.Setenv("PENALTY_ADDR", ":8080")
			t.Setenv("PENALTY_DECAY_RATE", "0.05")
			t.Setenv("PENALTY_DEFAULT_TOP_N", "5")
			t.Setenv("PENALTY_REFERENCE_DATE", "latest")
			t.Setenv("PENALTY_REDIS_ADDR", "localhost:6379")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DecayRate, convey.ShouldEqual, 0.05)
				convey.So(cfg.DefaultTopN, convey.ShouldEqual, 5)
				convey.So(cfg.ReferenceDate, convey.ShouldEqual, "latest")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			clearConfigEnvVars(t)
			path := writeConfigFile(t, `
addr: ":9090"
primary_source: "https://example.com/sheet.csv"
half_life_days: 30
max_top_n: 50
point_map_shooter:
  goal: 3
  saved: 0
  out: -1
`)
			t.Setenv("PENALTY_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PrimarySource, convey.ShouldEqual, "https://example.com/sheet.csv")
				convey.So(cfg.HalfLifeDays, convey.ShouldEqual, 30)
				convey.So(cfg.MaxTopN, convey.ShouldEqual, 50)
				convey.So(cfg.PointMapShooter["goal"], convey.ShouldEqual, 3)
			})

			convey.Convey("And env vars override the file", func() {
				t.Setenv("PENALTY_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the YAML file declares teams", func() {
			clearConfigEnvVars(t)
			path := writeConfigFile(t, `
default_team: male
teams:
  male:
    primary: "https://example.com/male.csv"
    fallback: "data/pseudo_male.csv"
  female:
    primary: "data/female.csv"
`)
			t.Setenv("PENALTY_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then every team gets its own sources", func() {
				convey.So(err, convey.ShouldBeNil)
				sources := cfg.Sources()
				convey.So(sources, convey.ShouldHaveLength, 2)
				convey.So(sources["male"].Fallback, convey.ShouldEqual, "data/pseudo_male.csv")
				convey.So(sources["female"].Primary, convey.ShouldEqual, "data/female.csv")
				convey.So(cfg.DefaultTeamName(), convey.ShouldEqual, "male")
			})
		})

		convey.Convey("When the config file is missing", func() {
			clearConfigEnvVars(t)
			t.Setenv("PENALTY_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When an override is invalid", func() {
			clearConfigEnvVars(t)
			t.Setenv("PENALTY_DEFAULT_TOP_N", "0")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
