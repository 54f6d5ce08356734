package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/foodtrace/backend/internal/application/catalog"
	apptrace "github.com/foodtrace/backend/internal/application/traceability"
	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/foodtrace/backend/internal/infrastructure/cache"
	"github.com/foodtrace/backend/internal/infrastructure/config"
	"github.com/foodtrace/backend/internal/infrastructure/event"
	"github.com/foodtrace/backend/internal/infrastructure/logger"
	"github.com/foodtrace/backend/internal/infrastructure/persistence"
	"github.com/foodtrace/backend/internal/infrastructure/scheduler"
	"github.com/foodtrace/backend/internal/interfaces/http/handler"
	"github.com/foodtrace/backend/internal/interfaces/http/middleware"
	"github.com/foodtrace/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			FoodTrace Backend API
//	@version		1.0
//	@description	FSMA 204 food traceability ledger and lineage engine

//	@contact.name	API Support
//	@contact.url	https://github.com/foodtrace/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

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
		_ = logger.Sync(log)
	}()

	log.Info("Starting FoodTrace Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Idempotency store: memory for single-instance deployments, Redis when
	// submissions can land on any instance
	var idempotencyStore shared.IdempotencyStore
	switch cfg.Idempotency.Backend {
	case "redis":
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing Redis idempotency store", zap.Error(err))
			}
		}()
		idempotencyStore = redisStore
		log.Info("Idempotency store initialized", zap.String("backend", "redis"))
	default:
		memStore := cache.NewInMemoryIdempotencyStore()
		defer func() {
			_ = memStore.Close()
		}()
		idempotencyStore = memStore
		log.Info("Idempotency store initialized", zap.String("backend", "memory"))
	}

	// Initialize repositories and the transaction scope
	scope := persistence.NewGormTransactionScope(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	lotRepo := persistence.NewGormLotRepository(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Audit trail: every domain event is serialized and logged once
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	auditHandler := event.NewAuditLogHandler(serializer, log)
	eventBus.Subscribe(event.NewIdempotentHandler(auditHandler, idempotencyStore, log))

	// Initialize application services
	productService := catalogapp.NewProductService(productRepo)
	lotService := apptrace.NewLotService(scope)
	eventService := apptrace.NewEventService(scope)
	lineageService := apptrace.NewLineageService(scope)
	stockService := apptrace.NewStockService(scope)
	reconciliationService := apptrace.NewReconciliationService(scope, log)

	eventService.SetIdempotencyStore(idempotencyStore)
	eventService.SetEventPublisher(eventBus)
	lotService.SetEventPublisher(eventBus)
	productService.SetEventPublisher(eventBus)
	reconciliationService.SetEventPublisher(eventBus)

	// Background reconciliation sweep
	if cfg.Reconciliation.SweepEnabled {
		sweeperConfig := scheduler.DefaultSweeperConfig()
		sweeperConfig.Interval = cfg.Reconciliation.SweepInterval
		sweeper := scheduler.NewReconciliationSweeper(sweeperConfig, lotRepo, reconciliationService, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start reconciliation sweeper", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sweeper.Stop(stopCtx); err != nil {
				log.Error("Error stopping reconciliation sweeper", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	handlers := router.Handlers{
		System:         handler.NewSystemHandler(),
		Product:        handler.NewProductHandler(productService),
		Lot:            handler.NewLotHandler(lotService, stockService),
		TrackingEvent:  handler.NewTrackingEventHandler(eventService),
		Lineage:        handler.NewLineageHandler(lineageService),
		Reconciliation: handler.NewReconciliationHandler(reconciliationService),
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Company - Resolve the company scope
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	companyConfig := middleware.DefaultCompanyConfig()
	companyConfig.SkipPaths = append(companyConfig.SkipPaths,
		"/api/v1/system/ping",
		"/api/v1/system/info",
		"/api/v1/ping",
	)
	companyConfig.Logger = log
	engine.Use(middleware.CompanyMiddlewareWithConfig(companyConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	for _, registrar := range router.BuildRoutes(handlers) {
		r.Register(registrar)
	}
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
