package router

import (
	"github.com/erp/dropship/internal/infrastructure/auth"
	"github.com/erp/dropship/internal/infrastructure/config"
	"github.com/erp/dropship/internal/infrastructure/logger"
	"github.com/erp/dropship/internal/interfaces/http/handler"
	"github.com/erp/dropship/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by NewEngine.
// SyncJobs may be nil when the background scheduler is disabled.
type Handlers struct {
	Health    *handler.HealthHandler
	Suppliers *handler.SupplierHandler
	Orders    *handler.OrderHandler
	SyncJobs  *handler.SyncJobHandler
}

// Options configures the middleware stack.
// A nil Verifier leaves the API unauthenticated; a nil Meter disables HTTP metrics.
type Options struct {
	Logger         *zap.Logger
	HTTP           config.HTTPConfig
	TrustedProxies []string
	SwaggerEnabled bool
	Tracing        middleware.TracingConfig
	Meter          metric.Meter
	Verifier       middleware.TokenVerifier
}

// NewEngine builds the gin engine with the middleware stack and every route.
//
// Middleware order:
//  1. RequestID
//  2. Tracing (otelgin)
//  3. Recovery and request logging
//  4. HTTP metrics
//  5. Security headers, CORS, body limit
//  6. JWT authentication and per-method scope, API routes only
func NewEngine(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(opts.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(opts.Tracing))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(opts.Meter))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(opts.HTTP)))
	engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))

	if h.Health != nil {
		engine.GET("/health", h.Health.Check)
		engine.GET("/api/v1/health", h.Health.Check)
	}
	if opts.SwaggerEnabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	if opts.Verifier != nil {
		r.Use(
			middleware.JWTAuthMiddleware(middleware.DefaultJWTConfig(opts.Verifier, log)),
			methodScope(),
		)
	} else {
		log.Warn("Admin API authentication is disabled")
	}
	r.Use(middleware.SpanAttributes())

	r.Register(dropshipRoutes(h))
	r.Setup()

	return engine
}

func dropshipRoutes(h Handlers) *DomainGroup {
	dg := NewDomainGroup("dropship", "/dropship")

	if s := h.Suppliers; s != nil {
		dg.GET("/suppliers", s.List)
		dg.POST("/suppliers", s.Create)
		dg.GET("/suppliers/:id", s.Get)
		dg.PUT("/suppliers/:id", s.Update)
		dg.DELETE("/suppliers/:id", s.Delete)
		dg.GET("/suppliers/:id/products", s.ListProducts)
		dg.POST("/suppliers/:id/products", s.AddProduct)
		dg.POST("/suppliers/:id/sync", s.Sync)
		dg.POST("/suppliers/:id/materialize", s.Materialize)
	}

	if o := h.Orders; o != nil {
		dg.GET("/suppliers/:id/orders", o.List)
		dg.POST("/suppliers/:id/orders", o.Create)
		dg.GET("/orders/:id", o.Get)
		dg.DELETE("/orders/:id", o.Delete)
		dg.PATCH("/orders/:id/status", o.Advance)
		dg.POST("/orders/:id/send", o.Send)
	}

	if j := h.SyncJobs; j != nil {
		dg.GET("/sync/jobs", j.History)
		dg.POST("/sync/jobs", j.Enqueue)
	}

	return dg
}

// methodScope requires the read scope for safe methods and write otherwise
func methodScope() gin.HandlerFunc {
	read := middleware.RequireScope(auth.ScopeRead)
	write := middleware.RequireScope(auth.ScopeWrite)
	return func(c *gin.Context) {
		if middleware.ScopeForMethod(c.Request.Method) == auth.ScopeRead {
			read(c)
			return
		}
		write(c)
	}
}
