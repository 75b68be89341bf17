// Package bootstrap assembles the dropship services from configuration.
// The server, the migration tool and the operator CLI share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"slices"

	dropshipapp "github.com/erp/dropship/internal/application/dropship"
	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/infrastructure/auth"
	"github.com/erp/dropship/internal/infrastructure/cache"
	"github.com/erp/dropship/internal/infrastructure/config"
	"github.com/erp/dropship/internal/infrastructure/logger"
	"github.com/erp/dropship/internal/infrastructure/persistence"
	"github.com/erp/dropship/internal/infrastructure/scheduler"
	"github.com/erp/dropship/internal/infrastructure/storage"
	"github.com/erp/dropship/internal/infrastructure/storefront"
	"github.com/erp/dropship/internal/infrastructure/supplierfeed"
	"github.com/erp/dropship/internal/infrastructure/telemetry"
	"github.com/erp/dropship/internal/interfaces/http/handler"
	"github.com/erp/dropship/internal/interfaces/http/middleware"
	"github.com/erp/dropship/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const meterName = "github.com/erp/dropship"

// App holds the wired services and the resources that must be released on exit
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *persistence.Database

	Registry    *dropshipapp.RegistryService
	Sync        *dropshipapp.SyncService
	Materialize *dropshipapp.MaterializeService
	Orders      *dropshipapp.OrderService

	// JWT is nil when jwt.enabled is false
	JWT *auth.JWTService

	meter     metric.Meter
	httpMeter bool
	closers   []func(context.Context) error
}

// NewLogger builds the process logger from the log section
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// OpenDatabase connects to PostgreSQL with the zap-backed GORM logger and,
// when enabled, the otelgorm tracing plugin.
func OpenDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err := plugin.Register(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}
	return db, nil
}

// New wires every service. The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: log}

	if err := app.initTelemetry(ctx); err != nil {
		_ = app.Close(ctx)
		return nil, err
	}

	db, err := OpenDatabase(cfg, app.Logger)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	app.DB = db
	app.closers = append(app.closers, func(context.Context) error { return db.Close() })

	if err := app.initServices(ctx, db.DB); err != nil {
		_ = app.Close(ctx)
		return nil, err
	}

	if cfg.JWT.Enabled {
		app.JWT = auth.NewJWTService(cfg.JWT)
	}
	return app, nil
}

func (a *App) initTelemetry(ctx context.Context) error {
	tc := a.Config.Telemetry

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.Enabled && tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize log export: %w", err)
	}
	a.closers = append(a.closers, lp.Shutdown)
	level, err := zapcore.ParseLevel(a.Config.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	a.Logger = lp.Bridge(a.Logger, level)

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.closers = append(a.closers, tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.MetricsInterval,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	a.closers = append(a.closers, mp.Shutdown)
	a.meter = mp.Meter(meterName)
	a.httpMeter = mp.IsEnabled()
	return nil
}

func (a *App) initServices(ctx context.Context, db *gorm.DB) error {
	cfg := a.Config
	log := a.Logger

	suppliers := persistence.NewGormSupplierRepository(db)
	products := persistence.NewGormSupplierProductRepository(db)
	orders := persistence.NewGormSupplierOrderRepository(db)
	catalog := persistence.NewGormCatalogStore(db,
		persistence.WithDefaultSalesChannel(cfg.Catalog.DefaultSalesChannelID),
	)

	locker, err := cache.NewLockerFactory(cfg.Sync, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateLocker()
	if err != nil {
		return err
	}

	metrics, err := telemetry.NewCatalogMetrics(a.meter)
	if err != nil {
		return fmt.Errorf("failed to register catalog metrics: %w", err)
	}

	fetcher := supplierfeed.NewClient(
		dropship.NewFeedRoutes(cfg.Sync.Routes, cfg.Sync.APIKey),
		cfg.Sync.FetchTimeout,
	)

	syncOpts := []dropshipapp.SyncOption{
		dropshipapp.WithSyncMetrics(metrics),
		dropshipapp.WithSyncWorkers(cfg.Sync.Workers),
	}
	if archive := a.feedArchive(ctx); archive != nil {
		syncOpts = append(syncOpts, dropshipapp.WithFeedArchive(archive))
	}
	if rv := storefront.NewRevalidator(cfg.Storefront.RevalidateURL, cfg.Storefront.Secret, cfg.Storefront.Timeout, log); rv != nil {
		syncOpts = append(syncOpts, dropshipapp.WithStorefrontNotifier(rv))
	}

	var registryOpts []dropshipapp.RegistryOption
	if cfg.Catalog.ProvisionStockLocations {
		registryOpts = append(registryOpts, dropshipapp.WithStockLocationProvisioner(catalog))
	}

	a.Registry = dropshipapp.NewRegistryService(suppliers, products, orders, log, registryOpts...)
	a.Sync = dropshipapp.NewSyncService(suppliers, products, fetcher, locker, log, syncOpts...)
	a.Materialize = dropshipapp.NewMaterializeService(suppliers, products, catalog, locker, log,
		dropshipapp.WithMaterializeMetrics(metrics),
	)
	a.Orders = dropshipapp.NewOrderService(suppliers, orders, persistence.NewGormOrderDirectory(db), log,
		dropshipapp.WithOrderDispatcher(supplierfeed.NewWooCommerceDispatcher(cfg.Sync.FetchTimeout)),
		dropshipapp.WithOrderLocker(locker),
	)
	return nil
}

// feedArchive returns nil when storage is disabled or unusable; archiving is best-effort
func (a *App) feedArchive(ctx context.Context) *storage.S3FeedArchive {
	if !a.Config.Storage.Enabled {
		return nil
	}
	archive, err := storage.NewS3FeedArchive(&a.Config.Storage, storage.WithLogger(a.Logger))
	if err != nil {
		a.Logger.Warn("Feed archive disabled", zap.Error(err))
		return nil
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		a.Logger.Warn("Feed archive bucket unavailable", zap.String("bucket", archive.Bucket()), zap.Error(err))
	}
	return archive
}

// NewScheduler builds the background job queue and its periodic trigger.
// Neither is started.
func (a *App) NewScheduler() (*scheduler.CatalogSyncScheduler, *scheduler.CatalogSyncTrigger, error) {
	sc := a.Config.Scheduler
	queueCfg := scheduler.DefaultCatalogSyncSchedulerConfig()
	if sc.MaxConcurrentJobs > 0 {
		queueCfg.MaxConcurrentJobs = sc.MaxConcurrentJobs
	}
	if sc.JobTimeout > 0 {
		queueCfg.JobTimeout = sc.JobTimeout
	}
	if sc.RetryAttempts >= 0 {
		queueCfg.RetryAttempts = sc.RetryAttempts
	}
	if sc.RetryDelay > 0 {
		queueCfg.RetryDelay = sc.RetryDelay
	}

	queue, err := scheduler.NewCatalogSyncScheduler(queueCfg,
		scheduler.NewSyncServiceExecutor(a.Sync, a.Logger), a.Logger)
	if err != nil {
		return nil, nil, err
	}

	trigger := scheduler.NewCatalogSyncTrigger(scheduler.CatalogSyncTriggerConfig{
		HourlyInterval: sc.HourlyInterval,
		DailyInterval:  sc.DailyInterval,
		WeeklyInterval: sc.WeeklyInterval,
	}, queue, a.Logger)
	return queue, trigger, nil
}

// Engine builds the admin HTTP engine. A nil queue leaves out the sync job endpoints.
func (a *App) Engine(queue handler.SyncJobQueue) *gin.Engine {
	opts := router.Options{
		Logger:         a.Logger,
		HTTP:           a.Config.HTTP,
		SwaggerEnabled: a.Config.Swagger.Enabled,
		Tracing: middleware.TracingConfig{
			ServiceName: a.Config.Telemetry.ServiceName,
			Enabled:     a.Config.Telemetry.Enabled,
		},
	}
	if a.httpMeter {
		opts.Meter = a.meter
	}
	if a.JWT != nil {
		opts.Verifier = a.JWT
	}

	handlers := router.Handlers{
		Health:    handler.NewHealthHandler(a.DB),
		Suppliers: handler.NewSupplierHandler(a.Registry, a.Sync, a.Materialize),
		Orders:    handler.NewOrderHandler(a.Orders),
	}
	if queue != nil {
		handlers.SyncJobs = handler.NewSyncJobHandler(queue)
	}
	return router.NewEngine(opts, handlers)
}

// Close releases resources in reverse order of acquisition
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, closeFn := range slices.Backward(a.closers) {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
