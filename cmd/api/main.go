package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"propcatalog/internal/config"
	handlers "propcatalog/internal/http/handler"
	"propcatalog/internal/http/middleware"
	"propcatalog/internal/logger"
	"propcatalog/internal/otel"
	"propcatalog/internal/query"
	"propcatalog/internal/repository"
	repomemory "propcatalog/internal/repository/memory"
	repomongo "propcatalog/internal/repository/mongodb"
	"propcatalog/internal/service"
	"propcatalog/internal/storage"
	"propcatalog/internal/store"
	memstore "propcatalog/internal/store/memory"
	mongostore "propcatalog/internal/store/mongodb"
)

// @title Property Catalog API
// @version 1.0
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error("tracing shutdown failed", "error", err)
		}
	}()

	db, owners, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	images, err := newImageResolver(cfg.MinIO, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	svc := handlers.Services{
		Properties: service.NewPropertyService(query.NewExecutor(db), images, service.NewMetrics(reg), log),
		Owners:     service.NewOwnerService(owners, log),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())
	app.Use(middleware.Deadline(cfg.RequestTimeout))

	handlers.RegisterRoutes(app, db, svc, reg)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr, "store_driver", cfg.StoreDriver)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	return nil
}

// openStore connects the configured document store and the owner
// repository that writes to it.
func openStore(ctx context.Context, cfg *config.AppConfig, log logger.Logger) (store.Store, repository.OwnerRepository, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store; data is lost on exit")
		mem := memstore.New()
		return mem, repomemory.NewOwnerMemory(mem), func() {}, nil
	case "mongo", "mongodb", "":
	default:
		return nil, nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	adapter, err := mongostore.Connect(cfg.Mongo, mongostore.NewRegistry(), log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to document store: %w", err)
	}
	closeFn := func() {
		if err := adapter.Close(); err != nil {
			log.Error("document store close failed", "error", err)
		}
	}

	if cfg.Mongo.EnsureIndexes {
		if err := adapter.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
	}
	return adapter, repomongo.NewOwnerMongo(adapter), closeFn, nil
}

// newImageResolver presigns image references through MinIO when an endpoint
// is configured.
func newImageResolver(cfg config.MinIOConfig, log logger.Logger) (*storage.URLResolver, error) {
	if cfg.Endpoint == "" {
		return storage.NewURLResolver(nil, cfg.PresignExpiry, log), nil
	}
	presigner, err := storage.NewMinIO(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	log.Info("image presigning enabled", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return storage.NewURLResolver(presigner, cfg.PresignExpiry, log), nil
}
