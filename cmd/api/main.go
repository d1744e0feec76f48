package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"legalpub/docs"
	"legalpub/internal/config"
	"legalpub/internal/database"
	"legalpub/internal/database/migration"
	"legalpub/internal/export"
	handlers "legalpub/internal/http/handler"
	"legalpub/internal/http/middleware"
	"legalpub/internal/logger"
	"legalpub/internal/otel"
	"legalpub/internal/repository"
	"legalpub/internal/repository/cache"
	"legalpub/internal/repository/postgres"
	"legalpub/internal/service"
	"legalpub/internal/storage"
	"legalpub/internal/web"
)

// @title Legal Document Publishing API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Error("tracing_init_failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Error("database_connect_failed", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Error("migration_failed", "error", err.Error())
		os.Exit(1)
	}

	var docRepo repository.DocumentRepository = postgres.NewDocumentPostgres(db)
	if cfg.Redis.Enabled() {
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			log.Warn("cache_disabled", "error", err.Error())
		} else {
			defer rdb.Close()
			docRepo = cache.NewDocumentCache(docRepo, rdb, cfg.Site.Revalidate(), log)
		}
	}

	// Attachment storage is optional; documents without one simply have no View PDF link
	var objStore storage.Storage
	if cfg.MinIO.Enabled() {
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Error("storage_init_failed", "error", err.Error())
			os.Exit(1)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	exportMetrics, err := export.NewMetrics(reg)
	if err != nil {
		log.Error("metrics_init_failed", "error", err.Error())
		os.Exit(1)
	}
	base, err := export.New(cfg.Export, cfg.Site, log)
	if err != nil {
		log.Error("exporter_init_failed", "error", err.Error())
		os.Exit(1)
	}
	exporter := export.Instrument(base, exportMetrics)
	if c, ok := exporter.(io.Closer); ok {
		defer c.Close()
	}

	docSvc := service.NewDocumentService(docRepo, exporter, objStore, log)

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Error("metrics_init_failed", "error", err.Error())
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
		Views:        web.NewEngine(),
		// Capture exports can take a while
		WriteTimeout: cfg.Export.Timeout() + 10*time.Second,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	// Structured request logs
	app.Use(middleware.Logger(log))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, docSvc, cfg.Site, reg)

	// Swagger UI pinned to the public host
	if err := handlers.RegisterSwagger(app, docs.SwaggerInfo, cfg.Site.BaseURL); err != nil {
		log.Warn("swagger_disabled", "error", err.Error())
	}

	go func() {
		<-ctx.Done()
		log.Info("server_shutdown", "reason", "signal")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server_shutdown_failed", "error", err.Error())
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server_started",
		"addr", addr,
		"export_strategy", string(exporter.Strategy()),
		"cache_enabled", cfg.Redis.Enabled(),
		"storage_enabled", objStore != nil,
	)
	if err := app.Listen(addr); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server_failed", "error", err.Error())
	}
}
