package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/tagnet-backend/config"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/logger"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/cache"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/layout"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/query"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/service"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/warmup"
)

const serviceName = "tagnet-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	lg, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx := context.Background()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{Config: &cfg.Database})
	if err != nil {
		lg.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		// the row cache is optional
		lg.Warn("redis unavailable, row cache disabled", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var store query.Store = query.NewPostgresStore(db, cfg.Query.Timezone)
	var invalidator warmup.Invalidator
	if rdb != nil {
		cached := cache.NewCachedStore(store, rdb, cfg.Redis.TTL, lg)
		store, invalidator = cached, cached
	}

	engine := bootstrap.NewLayoutEngine(cfg.Layout)
	lg.Info("layout engine selected", "engine", cfg.Layout.Engine)

	svc := service.NewGraphService(store, layout.NewCoordinator(engine, lg), service.Options{
		StrictRows:    cfg.Query.StrictRows,
		QueryTimeout:  cfg.Query.Timeout,
		LayoutTimeout: cfg.Layout.Timeout,
	}, lg)

	if sched := bootstrap.StartWarmup(cfg.Warmup, svc, invalidator, cfg.Query.Timeout*3, lg); sched != nil {
		defer sched.Stop()
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		DB:          db,
		Redis:       rdb,
		Service:     svc,
		Log:         lg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Query.Timeout + cfg.Layout.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("listening", "addr", srv.Addr, "environment", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server shutdown error", "error", err)
	}
}
