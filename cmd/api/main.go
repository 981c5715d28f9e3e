package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sisterblooms/storefront-backend/api/middleware"
	"github.com/sisterblooms/storefront-backend/api/routes"
	"github.com/sisterblooms/storefront-backend/internal/bootstrap"
	"github.com/sisterblooms/storefront-backend/internal/catalog"
	"github.com/sisterblooms/storefront-backend/internal/storefront"
	"github.com/sisterblooms/storefront-backend/pkg/config"
	"github.com/sisterblooms/storefront-backend/pkg/locks"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
	"github.com/sisterblooms/storefront-backend/pkg/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	cat, err := loadCatalog(cfg.Shop)
	if err != nil {
		logg.Error(ctx, "failed to load catalog", err)
		os.Exit(1)
	}
	loc, err := cfg.Shop.Location()
	if err != nil {
		logg.Error(ctx, "failed to resolve shop timezone", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := storefront.NewService(storefront.ServiceParams{
		Catalog:      cat,
		Storage:      storage.KV,
		Logger:       logg,
		Metrics:      metrics.NewCartMetrics(registry),
		Locks:        locks.NewStriped(0),
		Location:     loc,
		WhatsAppHost: cfg.Shop.WhatsAppHost,
	})
	if err != nil {
		logg.Error(ctx, "failed to create storefront service", err)
		os.Exit(1)
	}

	var limiter middleware.RateLimiter
	if rl := storage.RateLimiter(); rl != nil {
		limiter = rl
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Normalized(),
	})

	// Event streams only end when their request context does, so shutdown
	// cancels the base context rather than waiting out the deadline.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, svc, limiter, registry),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancelBase)

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
		_ = server.Close()
	}
	logg.Info(ctx, "api server stopped")
}

func loadCatalog(shop config.ShopConfig) (*catalog.Catalog, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if shop.CatalogPath != "" {
		cat, err = catalog.Load(shop.CatalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}
	if shop.WhatsAppNumber != "" {
		cat = cat.WithWhatsAppNumber(shop.WhatsAppNumber)
	}
	return cat, nil
}
