// hotfinder — quota-aware hot video discovery over the YouTube Data API v3.
//
// Collects recent uploads from channels and keyword searches, derives
// views-per-hour, filters by form factor and velocity, and publishes a
// sortable result table over HTTP. A quota ledger tracks every API call
// against the daily budget and survives quota exhaustion by waiting out
// the reset window instead of failing the run.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/boss9293-ops/Youtube-hot-finder/internal/config"
	"github.com/boss9293-ops/Youtube-hot-finder/internal/engine"
	"github.com/boss9293-ops/Youtube-hot-finder/internal/server"
)

var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	initEngine()

	cfgPath := envStr("HOTFINDER_CONFIG", config.DefaultPath())
	appCfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Warn("settings load failed, using defaults", slog.Any("error", err))
		appCfg = config.DefaultConfig()
	}

	ledger := engine.NewLedger()
	gw := engine.NewGateway(ledger)
	runner := engine.NewRunner(gw)
	srv := server.New(runner, gw, ledger, cfgPath, appCfg)

	stopWatch, err := config.Watch(cfgPath, srv.SetConfig)
	if err != nil {
		slog.Warn("settings watcher unavailable", slog.Any("error", err))
	} else {
		defer stopWatch()
	}

	server.InitMetrics(ledger, engine.Cfg.DailyQuota)

	app := fiber.New(fiber.Config{
		AppName:      "hotfinder " + version,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second,
	})
	server.Routes(app, srv)

	port := envStr("PORT", "8890")
	slog.Info("starting hotfinder",
		slog.String("port", port),
		slog.String("config", cfgPath),
		slog.Int("daily_quota", engine.Cfg.DailyQuota),
	)

	go func() {
		if err := app.Listen(":" + port); err != nil {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("shutdown failed", slog.Any("error", err))
	}
}

func initEngine() {
	engine.Init(engine.Config{
		APIBase:              envStr("YOUTUBE_API_BASE", ""),
		DailyQuota:           envInt("DAILY_QUOTA", 0),
		CacheMaxEntries:      envInt("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: envDuration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	})

	cacheTTL := envDuration("CACHE_TTL", engine.CacheTTL)
	engine.InitCache(envStr("REDIS_URL", ""), cacheTTL,
		engine.Cfg.CacheMaxEntries, engine.Cfg.CacheCleanupInterval)
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
