package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/erp/manufacturing/internal/application/inventory"
	mfgapp "github.com/erp/manufacturing/internal/application/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/auth"
	"github.com/erp/manufacturing/internal/infrastructure/cache"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/erp/manufacturing/internal/infrastructure/event"
	"github.com/erp/manufacturing/internal/infrastructure/logger"
	"github.com/erp/manufacturing/internal/infrastructure/migration"
	"github.com/erp/manufacturing/internal/infrastructure/persistence"
	"github.com/erp/manufacturing/internal/infrastructure/scheduler"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/erp/manufacturing/internal/interfaces/http/handler"
	"github.com/erp/manufacturing/internal/interfaces/http/middleware"
	"github.com/erp/manufacturing/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/erp/manufacturing/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Manufacturing Core API
//	@version		1.0
//	@description	Components, bills of materials, manufacturing orders and work orders with a stock ledger.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const shutdownTimeout = 30 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err.Error())
	}
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logging: console/json core teed with the OTLP log bridge
	core, err := logger.NewCore(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry)
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}
	log := telemetry.NewBridgedLogger(core, loggerProvider)
	defer func() { _ = log.Sync() }()

	log.Info("Starting manufacturing core",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database_driver", cfg.Database.Driver),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	profiler, err := telemetry.NewProfiler(cfg.Profiling, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	plugins := []gorm.Plugin{}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		plugins = append(plugins, telemetry.NewDBTracingPlugin(cfg.Telemetry, cfg.Database.Driver, log))
	}
	dbMetrics, err := telemetry.NewDBMetricsPlugin(meter)
	if err != nil {
		log.Fatal("Failed to create database metrics", zap.Error(err))
	}
	plugins = append(plugins, dbMetrics)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:  logger.NewGormLogger(log, logger.GormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh),
		Plugins: plugins,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := migrateSchema(ctx, cfg, db, log); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		dbMetrics.StartPoolStatsCollection(ctx, sqlDB, 30*time.Second)
		defer dbMetrics.Stop()
	}

	// Repositories and transaction scopes
	componentRepo := persistence.NewGormComponentRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	bomRepo := persistence.NewGormBOMRepository(db.DB)
	orderRepo := persistence.NewGormManufacturingOrderRepository(db.DB)
	workOrderRepo := persistence.NewGormWorkOrderRepository(db.DB)
	workCenterRepo := persistence.NewGormWorkCenterRepository(db.DB)
	inventoryScope := persistence.NewGormTransactionScope(db.DB)
	manufacturingScope := persistence.NewGormManufacturingTransactionScope(db.DB)

	// Application services
	clock := shared.SystemClock{}
	componentService := inventoryapp.NewComponentService(inventoryScope, componentRepo, clock, log)
	ledgerService := inventoryapp.NewStockLedgerService(inventoryScope, componentRepo, movementRepo, clock, log)
	bomService := inventoryapp.NewBOMService(inventoryScope, bomRepo, componentRepo, orderRepo, clock, log)
	manufacturingService := mfgapp.NewManufacturingService(manufacturingScope, orderRepo, workOrderRepo, clock, mfgapp.Config{
		OrderNumberPrefix:       cfg.Manufacturing.OrderNumberPrefix,
		DefaultWorkOrderMinutes: cfg.Manufacturing.DefaultWorkOrderMinutes,
	}, log)
	workCenterService := mfgapp.NewWorkCenterService(workCenterRepo, clock, log)

	// Idempotency keys for order completion and event delivery
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Event bus and subscribers
	eventBus := event.NewInMemoryEventBus(log)

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:    meter,
		Logger:   log,
		Provider: telemetry.NewGormManufacturingMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	businessMetrics.StartPeriodicCollection(ctx, cfg.Manufacturing.MetricsCollectInterval)
	defer businessMetrics.Stop()

	metricsHandler := telemetry.NewBusinessMetricsHandler(businessMetrics)
	auditHandler := event.NewIdempotentHandler(
		event.NewAuditLogHandler(log),
		idempotencyStore,
		shared.DefaultIdempotencyConfig(),
		log,
	)
	reorderHandler := inventoryapp.NewReorderAlertHandler(log).
		WithNotifier(inventoryapp.NewLoggingReorderAlertNotifier(log))

	eventBus.Subscribe(metricsHandler)
	eventBus.Subscribe(auditHandler)
	eventBus.Subscribe(reorderHandler)
	log.Info("Event handlers registered",
		zap.Strings("business_metrics_events", metricsHandler.EventTypes()),
		zap.Strings("audit_events", auditHandler.EventTypes()),
		zap.Strings("reorder_alert_events", reorderHandler.EventTypes()),
	)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	componentService.SetEventPublisher(eventBus)
	ledgerService.SetEventPublisher(eventBus)
	manufacturingService.SetEventPublisher(eventBus)

	// Ledger drift check
	reconcileConfig := scheduler.DefaultReconcileSchedulerConfig()
	reconcileConfig.Enabled = cfg.Manufacturing.ReconcileInterval > 0
	reconcileConfig.Interval = cfg.Manufacturing.ReconcileInterval
	reconcileScheduler, err := scheduler.NewReconcileScheduler(reconcileConfig, ledgerService, log)
	if err != nil {
		log.Fatal("Failed to create reconciliation scheduler", zap.Error(err))
	}
	if err := reconcileScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start reconciliation scheduler", zap.Error(err))
	}
	defer func() {
		if err := reconcileScheduler.Stop(context.Background()); err != nil {
			log.Error("Error stopping reconciliation scheduler", zap.Error(err))
		}
	}()

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register request validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
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
		middleware.Secure(),
		middleware.CORS(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Tracing(cfg.Telemetry.ServiceName, "/health"),
		httpMetrics,
		middleware.Profiling(profiler.IsEnabled()),
	)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, db)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiMiddleware := []gin.HandlerFunc{middleware.SpanAttributes()}
	if cfg.JWT.Enabled {
		apiMiddleware = append(apiMiddleware, middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			Validator: auth.NewJWTService(cfg.JWT),
			SkipPaths: []string{"/api/v1/system/ping", "/api/v1/system/info"},
			Logger:    log,
		}))
	} else {
		log.Warn("JWT authentication disabled; requests carry no actor")
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithMiddleware(apiMiddleware...))
	router.RegisterAPI(r, router.Handlers{
		Components:     handler.NewComponentHandler(componentService, ledgerService),
		StockMovements: handler.NewStockMovementHandler(ledgerService),
		BOMs:           handler.NewBOMHandler(bomService),
		WorkCenters:    handler.NewWorkCenterHandler(workCenterService),
		Orders:         handler.NewManufacturingOrderHandler(manufacturingService, idempotencyStore, cfg.Manufacturing.IdempotencyTTL),
		WorkOrders:     handler.NewWorkOrderHandler(manufacturingService),
		System:         systemHandler,
	})

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
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	log.Info("Server exited")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down logger provider", zap.Error(err))
	}
}

// migrateSchema creates the sqlite schema from the models, and applies the
// embedded SQL migrations on postgres over a dedicated connection, since
// closing the migrator closes its handle
func migrateSchema(ctx context.Context, cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if cfg.Database.Driver == "sqlite" {
		return db.AutoMigrate(ctx)
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}
