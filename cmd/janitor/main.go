package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sisterblooms/storefront-backend/internal/bootstrap"
	"github.com/sisterblooms/storefront-backend/internal/janitor"
	"github.com/sisterblooms/storefront-backend/pkg/config"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
	"github.com/sisterblooms/storefront-backend/pkg/metrics"
	pkgredis "github.com/sisterblooms/storefront-backend/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	metricsAddr := flag.String("metrics-addr", "", "address to serve /metrics on (empty disables)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "janitor"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "janitor",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "storage": cfg.Storage.Normalized()})

	if !cfg.Storage.IsSQL() {
		// Redis expires idle carts through key TTLs and memory does not outlive the process.
		logg.Info(ctx, "storage backend needs no pruning; exiting")
		return
	}

	storage, err := bootstrap.OpenStorage(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	registry := prometheus.NewRegistry()
	janitorMetrics := metrics.NewJanitorMetrics(registry)

	pruneJob, err := janitor.NewPruneJob(janitor.PruneJobParams{
		Logger:    logg,
		Storage:   storage.SQL,
		Metrics:   janitorMetrics,
		Retention: cfg.Janitor.Retention,
	})
	if err != nil {
		logg.Error(ctx, "failed to create prune job", err)
		os.Exit(1)
	}

	var lock janitor.Lock
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		client, err := pkgredis.New(ctx, cfg.Redis, cfg.Storage.Namespace, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer client.Close()
		lock, err = janitor.NewRedisLock(client, client.Key("janitor", "lock"), cfg.Janitor.LockTTL)
		if err != nil {
			logg.Error(ctx, "failed to create janitor lock", err)
			os.Exit(1)
		}
	}

	runner, err := janitor.NewRunner(janitor.RunnerParams{
		Logger:   logg,
		Registry: janitor.NewRegistry(pruneJob),
		Lock:     lock,
		Metrics:  janitorMetrics,
		Interval: cfg.Janitor.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create janitor", err)
		os.Exit(1)
	}

	if *once {
		if err := runner.RunOnce(ctx); err != nil {
			logg.Error(ctx, "janitor cycle failed", err)
			os.Exit(1)
		}
		return
	}

	if *metricsAddr != "" {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "metrics server stopped", err)
			}
		}()
		defer srv.Close()
	}

	logg.Info(ctx, "janitor started")
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "janitor exited", err)
		os.Exit(1)
	}
}
