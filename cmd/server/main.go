package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	financeapp "github.com/duka/backend/internal/application/finance"
	inventoryapp "github.com/duka/backend/internal/application/inventory"
	partnerapp "github.com/duka/backend/internal/application/partner"
	reminderapp "github.com/duka/backend/internal/application/reminder"
	reportapp "github.com/duka/backend/internal/application/report"
	shopapp "github.com/duka/backend/internal/application/shop"
	tradeapp "github.com/duka/backend/internal/application/trade"
	"github.com/duka/backend/internal/domain/report"
	"github.com/duka/backend/internal/infrastructure/auth"
	"github.com/duka/backend/internal/infrastructure/cache"
	"github.com/duka/backend/internal/infrastructure/config"
	"github.com/duka/backend/internal/infrastructure/export"
	"github.com/duka/backend/internal/infrastructure/logger"
	"github.com/duka/backend/internal/infrastructure/persistence"
	"github.com/duka/backend/internal/infrastructure/printing"
	"github.com/duka/backend/internal/infrastructure/scheduler"
	"github.com/duka/backend/internal/infrastructure/storage"
	"github.com/duka/backend/internal/infrastructure/telemetry"
	"github.com/duka/backend/internal/interfaces/http/handler"
	"github.com/duka/backend/internal/interfaces/http/middleware"
	"github.com/duka/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		ServiceName:       cfg.Telemetry.ServiceName,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		TracingEnabled:    cfg.Telemetry.TracingEnabled,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}

	// Logs go to the collector as well as stdout once the bridge is up
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = telemetry.BridgeLogger(log, loggerProvider, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting duka backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      logger.MapGormLogLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterGormTracing(db.DB, cfg.Database.DBName); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	// Postgres is migrated with cmd/migrate; sqlite files are created on the fly
	if cfg.Database.Driver == "sqlite" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	persistence.RegisterShopGuard(db.DB)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}

	// Shared state: idempotency records and the reminder lock
	backends, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize cache backends", zap.Error(err))
	}
	defer func() {
		_ = backends.Close()
	}()

	// Export archive
	var archiver export.Archiver = storage.NewMemoryArchiver()
	if cfg.Storage.Enabled {
		s3Archiver, err := storage.NewS3Archiver(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize export archive", zap.Error(err))
		}
		archiver = s3Archiver
	}

	// Receipts and printed exports render as HTML unless a browser is available for PDF
	var pdf printing.PDFRenderer
	if cfg.Printing.ChromeEnabled {
		pdf = printing.NewChromedpRenderer(printing.ChromedpConfig{
			Timeout:   cfg.Printing.Timeout,
			NoSandbox: true,
			Logger:    log,
		})
	}
	printer := printing.NewReceiptPrinter(pdf, cfg.Reminder.Currency, log)
	tablePrinter := printing.NewTablePrinter(pdf, cfg.Reminder.Currency, log)

	// Application services
	loc := cfg.App.Location()
	repos := persistence.NewRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)
	ledger := inventoryapp.NewLedger(log)
	profit := report.NewProfitAllocator(reportapp.NewRepositoryCostSource(repos), log)

	shopService := shopapp.NewShopService(persistence.NewGormShopRepository(db.DB), log)
	categoryService := inventoryapp.NewCategoryService(repos)
	stockItemService := inventoryapp.NewStockItemService(scope, repos, ledger, log)
	customerService := partnerapp.NewCustomerService(repos, log)
	saleService := tradeapp.NewSaleService(scope, repos, ledger, profit, loc, log)
	saleService.SetArchiver(archiver)
	saleService.SetReceiptPrinter(printer)
	saleService.SetTablePrinter(tablePrinter)
	debtService := financeapp.NewDebtService(scope, repos, ledger, loc, log)
	expenditureService := financeapp.NewExpenditureService(repos.Expenditures(), loc, log)
	expenditureService.SetArchiver(archiver)
	reportService := reportapp.NewReportService(repos, loc, log)
	reminderService := reminderapp.NewReminderService(repos,
		reminderapp.NewLogSender(log),
		reminderapp.NewComposer(cfg.Reminder.Currency),
		loc, log)
	reminderService.SetLocker(backends.Locker)

	if created, err := shopService.EnsureDefaults(ctx); err != nil {
		log.Fatal("Failed to seed default shops", zap.Error(err))
	} else if len(created) > 0 {
		log.Info("Default shops created", zap.Int("count", len(created)))
	}

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:         meterProvider.Meter("duka-backend/business"),
			Logger:        log,
			StockProvider: telemetry.NewGormStockMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		ledger.SetBusinessMetrics(businessMetrics)
		saleService.SetBusinessMetrics(businessMetrics)
		debtService.SetBusinessMetrics(businessMetrics)
		reportService.SetBusinessMetrics(businessMetrics)
		reminderService.SetBusinessMetrics(businessMetrics)
		businessMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.CollectInterval)
	}

	var reminderScheduler *scheduler.ReminderScheduler
	if cfg.Reminder.Enabled {
		schedCfg := scheduler.DefaultReminderSchedulerConfig()
		if cfg.Reminder.Hour > 0 {
			schedCfg.Hour = cfg.Reminder.Hour
		}
		if cfg.Reminder.Timeout > 0 {
			schedCfg.Timeout = cfg.Reminder.Timeout
		}
		schedCfg.Location = loc
		reminderScheduler, err = scheduler.NewReminderScheduler(reminderService, log, schedCfg)
		if err != nil {
			log.Fatal("Failed to create reminder scheduler", zap.Error(err))
		}
		if err := reminderScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start reminder scheduler", zap.Error(err))
		}
	}

	// Handlers
	handlers := router.Handlers{
		System:      handler.NewSystemHandler(cfg.App.Name, version, sqlDB),
		Shop:        handler.NewShopHandler(shopService),
		Inventory:   handler.NewInventoryHandler(categoryService, stockItemService),
		Customer:    handler.NewCustomerHandler(customerService, reminderService),
		Sale:        handler.NewSaleHandler(saleService),
		Debt:        handler.NewDebtHandler(debtService, reminderService),
		Expenditure: handler.NewExpenditureHandler(expenditureService),
		Report:      handler.NewReportHandler(reportService),
	}

	// Gin engine
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	// Tracing wraps everything so the request ID lands on the server span
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(meterProvider))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	if cfg.JWT.Enabled {
		jwtCfg := middleware.DefaultJWTConfig(auth.NewJWTService(cfg.JWT))
		jwtCfg.Logger = log
		r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))
	}
	shopCfg := middleware.DefaultShopConfig(shopService)
	shopCfg.DefaultShopID = cfg.App.DefaultShopID
	shopCfg.Logger = log
	r.Use(
		middleware.ShopContext(shopCfg),
		middleware.TracingAttributeInjector(),
		middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:   profiler.IsEnabled(),
			SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
		}),
		middleware.SpanErrorMarker(),
	)

	idempotencyCfg := middleware.DefaultIdempotencyConfig(backends.Idempotency)
	idempotencyCfg.Logger = log
	r.Register(router.Groups(handlers, middleware.Idempotency(idempotencyCfg))...)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if reminderScheduler != nil {
		if err := reminderScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping reminder scheduler", zap.Error(err))
		}
	}
	if businessMetrics != nil {
		businessMetrics.Stop()
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited")
}
