package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/evandro-macedo/interactive-dashboard/internal/broadcast"
	"github.com/evandro-macedo/interactive-dashboard/internal/cache"
	"github.com/evandro-macedo/interactive-dashboard/internal/notify"
	"github.com/evandro-macedo/interactive-dashboard/internal/observability"
	"github.com/evandro-macedo/interactive-dashboard/internal/overview"
	"github.com/evandro-macedo/interactive-dashboard/internal/source"
	"github.com/evandro-macedo/interactive-dashboard/internal/store"
	"github.com/evandro-macedo/interactive-dashboard/internal/syncer"
)

func main() {
	var cfg syncer.Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, _ := observability.NewLogger(cfg.LogLevel)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	reg := prometheus.DefaultRegisterer
	observability.RegisterAll(reg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := store.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool); err != nil {
		log.Fatal("schema setup failed", zap.Error(err))
	}

	src, err := source.New(ctx, cfg.SourceDSN)
	if err != nil {
		log.Fatal("source connect failed", zap.Error(err))
	}
	defer src.Close()

	broadcaster, err := broadcast.New(cfg.RedisURL, log)
	if err != nil {
		log.Fatal("redis connect failed", zap.Error(err))
	}
	defer broadcaster.Close()

	db := store.New(pool)
	views := overview.NewService(db, cache.New(cache.DefaultTTL), log)
	dispatcher := notify.NewDispatcher(db, log)
	dispatcher.Queue().Start(ctx, cfg.DispatchWorkers)

	engine := syncer.New(src, db, views, dispatcher, broadcaster, log)

	// Metrics server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	go func() {
		log.Info("metrics server starting", zap.String("addr", cfg.MetricsAddr))
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.Fatal("metrics server failed", zap.Error(err))
		}
	}()

	log.Info("sync scheduler starting", zap.Duration("interval", cfg.SyncInterval))
	runOnce(ctx, engine, log)

	// One cycle at a time: a slow sync delays the next tick instead of
	// overlapping with it.
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down, draining dispatch queue")
			done := make(chan struct{})
			go func() {
				dispatcher.Queue().Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(cfg.ShutdownTimeout):
				log.Warn("dispatch drain timed out")
			}
			log.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			runOnce(ctx, engine, log)
		}
	}
}

func runOnce(ctx context.Context, engine *syncer.Engine, log *zap.Logger) {
	if ctx.Err() != nil {
		return
	}
	if _, err := engine.Sync(ctx); err != nil {
		log.Error("sync cycle failed", zap.Error(err))
	}
}
