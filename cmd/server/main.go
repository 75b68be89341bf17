package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/dropship/internal/infrastructure/bootstrap"
	"github.com/erp/dropship/internal/infrastructure/config"
	"github.com/erp/dropship/internal/infrastructure/scheduler"
	"github.com/erp/dropship/internal/interfaces/http/handler"
	"github.com/erp/dropship/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/erp/dropship/docs"
)

//	@title			Dropship API
//	@version		1.0
//	@description	Supplier catalog sync, dropship pricing and supplier orders

//	@contact.name	API Support
//	@contact.url	https://github.com/erp/dropship

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting dropship service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	log = app.Logger
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			log.Error("Failed to release resources", zap.Error(err))
		}
	}()

	// Background catalog sync
	var queue handler.SyncJobQueue
	var stopScheduler func(context.Context)
	if cfg.Scheduler.Enabled {
		jobs, trigger, err := app.NewScheduler()
		if err != nil {
			log.Fatal("Failed to create catalog sync scheduler", zap.Error(err))
		}
		if err := startScheduler(ctx, jobs, trigger); err != nil {
			log.Fatal("Failed to start catalog sync scheduler", zap.Error(err))
		}
		queue = jobs
		stopScheduler = func(ctx context.Context) {
			if err := trigger.Stop(ctx); err != nil {
				log.Error("Failed to stop catalog sync trigger", zap.Error(err))
			}
			if err := jobs.Stop(ctx); err != nil {
				log.Error("Failed to stop catalog sync scheduler", zap.Error(err))
			}
		}
		log.Info("Catalog sync scheduler started",
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
		)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        app.Engine(queue),
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

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if stopScheduler != nil {
		stopScheduler(shutdownCtx)
	}

	log.Info("Server exited")
}

func startScheduler(ctx context.Context, jobs *scheduler.CatalogSyncScheduler, trigger *scheduler.CatalogSyncTrigger) error {
	if err := jobs.Start(ctx); err != nil {
		return err
	}
	if err := trigger.Start(ctx); err != nil {
		_ = jobs.Stop(ctx)
		return err
	}
	return nil
}
