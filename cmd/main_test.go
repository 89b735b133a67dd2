package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/penalty/internal/adapters/http/api"
	"github.com/okian/penalty/internal/adapters/http/site"
	"github.com/okian/penalty/internal/adapters/http/swagger"
	"github.com/okian/penalty/internal/config"
	"github.com/okian/penalty/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

const sampleLog = `Date,Shooter Name,Keeper Name,Status,Shoot Position
03/01/2025,A,K1,goal,top-left
03/02/2025,B,K1,saved,bottom-right
03/02/2025,A,K2,out,
`

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given PENALTY_ environment overrides", t, func() {
		t.Setenv("PENALTY_ADDR", ":8080")
		t.Setenv("PENALTY_HALF_LIFE_DAYS", "30")
		t.Setenv("PENALTY_DEFAULT_TOP_N", "5")

		convey.Convey("Then configuration picks them up", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.HalfLifeDays, convey.ShouldEqual, 30)
			convey.So(cfg.DefaultTopN, convey.ShouldEqual, 5)
		})
	})

	convey.Convey("Given an empty listen address", t, func() {
		t.Setenv("PENALTY_ADDR", "")

		convey.Convey("Then loading fails", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given a config pointing at a local log", t, func() {
		convey.So(logger.InitWriter(io.Discard, "text"), convey.ShouldBeNil)
		path := filepath.Join(t.TempDir(), "penalty.csv")
		convey.So(os.WriteFile(path, []byte(sampleLog), 0o600), convey.ShouldBeNil)

		cfg := config.New()
		cfg.PrimarySource = path
		cfg.FallbackSource = ""
		cfg.ReferenceDate = "2025-03-02"
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		convey.Convey("When the service is built, started and routed", func() {
			svc, closeCache, err := buildService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			defer closeCache()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			mux := http.NewServeMux()
			site.Register(ctx, mux)
			swagger.Register(ctx, mux)
			api.NewServer(svc).Register(ctx, mux)

			convey.Convey("Then the leaderboard is served", func() {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?role=shooter", nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, `"id":"A"`)
			})

			convey.Convey("And the landing page is served", func() {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("And the API docs are served", func() {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When a second team has its own log", func() {
			other := filepath.Join(t.TempDir(), "female.csv")
			convey.So(os.WriteFile(other, []byte(sampleLog), 0o600), convey.ShouldBeNil)
			cfg.Teams = map[string]config.Source{
				"male":   {Primary: path},
				"female": {Primary: other},
			}
			cfg.DefaultTeam = "male"
			svc, closeCache, err := buildService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			defer closeCache()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then each team is served under its name", func() {
				st, err := svc.Stats(ctx, "female")
				convey.So(err, convey.ShouldBeNil)
				convey.So(st.Team, convey.ShouldEqual, "female")
				convey.So(st.Teams, convey.ShouldResemble, []string{"female", "male"})

				def, err := svc.Stats(ctx, "")
				convey.So(err, convey.ShouldBeNil)
				convey.So(def.Team, convey.ShouldEqual, "male")
			})
		})

		convey.Convey("When Redis is configured but unreachable", func() {
			cfg.RedisAddr = "127.0.0.1:1"
			svc, closeCache, err := buildService(ctx, cfg, logger.Get())

			convey.Convey("Then the service still builds", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc, convey.ShouldNotBeNil)
				closeCache()
			})
		})

		convey.Convey("When the decay settings are invalid", func() {
			cfg.HalfLifeDays = -1
			_, _, err := buildService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
	})
}
