package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/okian/penalty/internal/adapters/cache"
	"github.com/okian/penalty/internal/adapters/http/api"
	"github.com/okian/penalty/internal/adapters/http/site"
	"github.com/okian/penalty/internal/adapters/http/swagger"
	"github.com/okian/penalty/internal/adapters/source"
	service "github.com/okian/penalty/internal/app"
	"github.com/okian/penalty/internal/config"
	"github.com/okian/penalty/pkg/logger"
	"github.com/okian/penalty/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// We collect our own system metrics instead of the default Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if cfg.LogFormat != "text" {
		if err := logger.InitWriter(os.Stdout, cfg.LogFormat); err != nil {
			os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
			return
		}
	}
	loggerInstance := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, closeCache, err := buildService(ctx, cfg, loggerInstance)
	if err != nil {
		os.Stderr.WriteString("failed to build service: " + err.Error() + "\n")
		return
	}
	defer closeCache()

	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildService wires the event source, result cache layers and analytics
// options from cfg. The returned func releases the Redis client, if any.
func buildService(ctx context.Context, cfg *config.Config, lg logger.Logger) (*service.Service, func(), error) {
	rate, err := cfg.Rate()
	if err != nil {
		return nil, nil, err
	}
	shooter, err := cfg.ShooterPoints()
	if err != nil {
		return nil, nil, err
	}
	keeper, err := cfg.KeeperPoints()
	if err != nil {
		return nil, nil, err
	}

	var layers []cache.Cache
	if cfg.CacheSize > 0 {
		layers = append(layers, cache.NewMemory(cache.WithMaxSize(cfg.CacheSize), cache.WithTTL(cfg.CacheTTL())))
	}

	closer := func() {}
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		rc, err := cache.NewRedis(client, cache.WithRedisTTL(cfg.CacheTTL()))
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		if err := rc.Ping(ctx); err != nil {
			// Tiered treats Redis failures as misses, so a down Redis only costs speed.
			lg.Warn(ctx, "redis unreachable at startup", logger.String("addr", cfg.RedisAddr), logger.Error(err))
		}
		layers = append(layers, rc)
		closer = func() {
			if err := rc.Close(); err != nil {
				lg.Warn(ctx, "redis close failed", logger.Error(err))
			}
		}
	}

	opts := []service.Option{
		service.WithLogger(lg),
		service.WithDefaultTeam(cfg.DefaultTeamName()),
		service.WithCacheLayers(layers...),
		service.WithRate(rate),
		service.WithPoints(shooter, keeper),
		service.WithReference(cfg.ReferenceDate),
		service.WithTopN(cfg.DefaultTopN, cfg.MaxTopN),
		service.WithRefreshInterval(cfg.RefreshInterval()),
	}
	for name, src := range cfg.Sources() {
		loader := source.New(src.Primary, src.Fallback,
			source.WithTimeout(cfg.SourceTimeout()),
			source.WithLogger(lg.With(logger.String("team", name))),
		)
		opts = append(opts, service.WithTeam(name, loader))
	}
	return service.New(opts...), closer, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
