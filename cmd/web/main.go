// cmd/web/main.go
//
// Beacon – HTTP entry point.
//
// Boot order
// ----------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load and validate configuration (yaml → BEACON_ env overlay →
//     Vault secret resolution).
//
//  4. Open the visit store (JSON file or MySQL by config).
//
//  5. Build the geo enricher: provider (ip-api HTTP or local MaxMind DB)
//     plus lookup cache (memory LRU or Redis).
//
//  6. Assemble the recorder and mount the tracking router, Prometheus
//     /metrics, and the security/HTTPS middleware.
//
//  7. Serve with hardened timeouts until SIGINT/SIGTERM, then drain.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/yanizio/beacon/internal/config"
	"github.com/yanizio/beacon/internal/geo"
	"github.com/yanizio/beacon/internal/logger"
	"github.com/yanizio/beacon/internal/middleware"
	"github.com/yanizio/beacon/internal/server"
	"github.com/yanizio/beacon/internal/store"
	"github.com/yanizio/beacon/internal/track"
	"github.com/yanizio/beacon/internal/visit"
)

const serverEnvPath = "/usr/local/etc/beacon/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Configuration ───────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Visit store ─────────────────────────────────────────────────
	//
	visits, err := store.Open(cfg)
	if err != nil {
		logOut.Fatalf("open visit store: %v", err)
	}
	defer visits.Close()
	logOut.Infow("visit store online", "driver", cfg.Storage.Driver)

	//
	// ── 3.  Geo enricher ────────────────────────────────────────────────
	//
	enricher, closeGeo, err := buildEnricher(cfg)
	if err != nil {
		logOut.Fatalf("build geo enricher: %v", err)
	}
	defer closeGeo()

	//
	// ── 4.  Recorder + router ───────────────────────────────────────────
	//
	recorder := visit.NewRecorder(visits, enricher)
	handler := track.New(recorder, visits, cfg)

	root := chi.NewRouter()
	root.Handle("/metrics", promhttp.Handler())
	root.Mount("/", handler.Routes(cfg.HTTP.RateLimitPerMinute))

	var h http.Handler = middleware.Security(root)
	h = middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS, h)

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, h)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := server.Run(context.Background(), srv); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
	logOut.Infow("shutdown complete")
}

// buildEnricher assembles provider + cache from config.  The returned
// closer releases provider resources (the MaxMind reader); it is a
// no-op for the HTTP provider.
func buildEnricher(cfg *config.Config) (*geo.Enricher, func(), error) {
	noop := func() {}

	var provider geo.Provider
	closer := noop
	switch cfg.Geo.Provider {
	case "ipapi":
		provider = geo.NewIPAPI(cfg.Geo.Endpoint)
	case "mmdb":
		mmdb, err := geo.OpenMMDB(cfg.Geo.MMDBPath)
		if err != nil {
			return nil, noop, err
		}
		provider = mmdb
		closer = func() { mmdb.Close() }
	case "off":
		// nil provider → Enricher always returns the zero Info.
		return geo.NewEnricher(nil, nil, 0), noop, nil
	}

	var cache geo.Cache
	switch cfg.Geo.Cache.Backend {
	case "memory":
		cache = geo.NewMemoryCache(
			cfg.Geo.Cache.Capacity,
			time.Duration(cfg.Geo.Cache.TTLMinutes)*time.Minute,
		)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = geo.NewRedisCache(rdb, time.Duration(cfg.Geo.Cache.TTLMinutes)*time.Minute)
	case "off":
		// no cache; every hit is a fresh lookup
	}

	timeout := time.Duration(cfg.Geo.TimeoutSeconds) * time.Second
	return geo.NewEnricher(provider, cache, timeout), closer, nil
}
