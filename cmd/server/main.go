package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	procurementapp "github.com/procurement/backend/internal/application/procurement"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/auth"
	"github.com/procurement/backend/internal/infrastructure/cache"
	"github.com/procurement/backend/internal/infrastructure/config"
	"github.com/procurement/backend/internal/infrastructure/logger"
	"github.com/procurement/backend/internal/infrastructure/persistence"
	"github.com/procurement/backend/internal/infrastructure/storage"
	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"github.com/procurement/backend/internal/interfaces/http/handler"
	"github.com/procurement/backend/internal/interfaces/http/middleware"
	"github.com/procurement/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting procurement backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()
	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	// Telemetry: traces, metrics, the zap log bridge and continuous profiling
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		level, lerr := zapcore.ParseLevel(cfg.Log.Level)
		if lerr != nil {
			level = zapcore.InfoLevel
		}
		log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, loggerProvider.ZapCore(level))
		}))
	}

	// models and other package-level code log through the global logger
	restoreGlobals := zap.ReplaceGlobals(log)
	defer restoreGlobals()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilerAddress,
		ApplicationName: serviceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	// Database with zap-backed SQL logging and otelgorm tracing
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	dbOpts := []persistence.DatabaseOption{persistence.WithGormLogger(gormLog)}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		dbTracing.DBName = cfg.Database.DBName
		dbOpts = append(dbOpts, persistence.WithPlugins(telemetry.NewDBTracingPlugin(dbTracing, log)))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Object storage for LOA, invoice, amendment and supporting documents
	var objectStorage procurementapp.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare storage bucket", zap.Error(err), zap.String("bucket", s3Storage.GetBucket()))
		}
		objectStorage = s3Storage
	} else {
		log.Warn("Object storage disabled, documents are kept in memory")
		objectStorage = storage.NewMemoryObjectStorage()
	}

	// Idempotency store for retried creates
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cfg.Idempotency.Backend,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories and application services
	repos := persistence.NewRepositories(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	loaService := procurementapp.NewLoaService(repos, uow, objectStorage, log)
	billService := procurementapp.NewBillService(repos.Loas, repos.Bills, objectStorage, log)
	amendmentService := procurementapp.NewAmendmentService(repos.Loas, repos.Amendments, objectStorage, log)
	documentService := procurementapp.NewOtherDocumentService(repos.Loas, repos.Documents, objectStorage, log)
	financeService := procurementapp.NewFinancialCalculationService(repos.Loas, repos.Bills)
	tenderService := procurementapp.NewTenderService(repos.Tenders, repos.Loas, log)
	purchaseOrderService := procurementapp.NewPurchaseOrderService(repos.Loas, repos.PurchaseOrders, log)

	if meterProvider.IsEnabled() {
		metrics, err := telemetry.NewProcurementMetrics(meterProvider.Meter("procurement"))
		if err != nil {
			log.Warn("Procurement metrics unavailable", zap.Error(err))
		} else {
			loaService.SetMetrics(metrics)
			billService.SetMetrics(metrics)
			amendmentService.SetMetrics(metrics)
			documentService.SetMetrics(metrics)
		}
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: serviceName,
			Enabled:     tracerProvider.IsEnabled(),
		}),
		middleware.HTTPMetrics(meterProvider.Meter("procurement.http")),
		middleware.CORSWithConfig(corsConfig),
		middleware.Secure(cfg.App.Env == "production"),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	maxFileSize := cfg.Storage.MaxFileSize
	handlers := router.Handlers{
		Loa:           handler.NewLoaHandler(loaService, financeService, maxFileSize),
		Bill:          handler.NewBillHandler(billService, maxFileSize),
		Amendment:     handler.NewAmendmentHandler(amendmentService, maxFileSize),
		Document:      handler.NewOtherDocumentHandler(documentService, maxFileSize),
		Tender:        handler.NewTenderHandler(tenderService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(purchaseOrderService),
		System: handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.Pinger{
			"database": db,
		}),
	}

	apiMiddleware := []gin.HandlerFunc{}
	if cfg.JWT.Enabled {
		apiMiddleware = append(apiMiddleware, middleware.JWTAuth(middleware.JWTConfig{
			Verifier: auth.NewTokenVerifier(cfg.JWT),
			Logger:   log,
		}))
	} else {
		log.Warn("JWT authentication disabled")
	}
	apiMiddleware = append(apiMiddleware,
		middleware.SpanEnricher(),
		middleware.Idempotency(idempotencyStore,
			middleware.WithIdempotencyConfig(shared.IdempotencyConfig{
				Enabled: cfg.Idempotency.Enabled,
				TTL:     cfg.Idempotency.TTL,
				LockTTL: cfg.Idempotency.LockTTL,
			}),
			middleware.WithIdempotencyLogger(log),
		),
	)

	router.Mount(engine, handlers, router.WithMiddleware(apiMiddleware...))

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Flush telemetry after the last request has finished
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
