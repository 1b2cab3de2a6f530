package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	installmentapp "github.com/goldshop/backend/internal/application/installment"
	"github.com/goldshop/backend/internal/infrastructure/cache"
	"github.com/goldshop/backend/internal/infrastructure/config"
	"github.com/goldshop/backend/internal/infrastructure/event"
	"github.com/goldshop/backend/internal/infrastructure/logger"
	"github.com/goldshop/backend/internal/infrastructure/persistence"
	"github.com/goldshop/backend/internal/infrastructure/scheduler"
	"github.com/goldshop/backend/internal/interfaces/http/handler"
	"github.com/goldshop/backend/internal/interfaces/http/middleware"
	"github.com/goldshop/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Gold Shop Ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	contractRepo := persistence.NewGormContractRepository(db.DB)
	entryRepo := persistence.NewGormLedgerEntryRepository(db.DB)

	// Idempotency store: Redis when available, in-memory fallback unless the
	// deployment requires shared state
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Ledger.RequireRedisIdempotency),
	)
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Initialize application services
	contractService := installmentapp.NewContractService(contractRepo, entryRepo)
	paymentService := installmentapp.NewPaymentService(contractRepo, entryRepo, idempotencyStore, cfg.Ledger.QuoteMaxAge)
	paymentService.SetIdempotencyTTL(cfg.Ledger.IdempotencyTTL)
	adjustmentService := installmentapp.NewAdjustmentService(contractRepo, entryRepo)
	defaultService := installmentapp.NewDefaultService(contractRepo, entryRepo, log)

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

	// Inject event bus into services that publish domain events
	contractService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	adjustmentService.SetEventPublisher(eventBus)
	defaultService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	contractHandler := handler.NewContractHandler(contractService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	adjustmentHandler := handler.NewAdjustmentHandler(adjustmentService)
	defaultHandler := handler.NewDefaultHandler(defaultService)

	// Nightly default scan (if enabled)
	if cfg.Scheduler.Enabled {
		scanScheduler := scheduler.NewDefaultScanScheduler(scheduler.DefaultScanSchedulerConfig{
			CronSchedule: cfg.Scheduler.ScanCronSchedule,
			JobTimeout:   cfg.Scheduler.JobTimeout,
		}, defaultService, log)
		if err := scanScheduler.Start(); err != nil {
			log.Fatal("Failed to start default scan scheduler", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := scanScheduler.Stop(ctx); err != nil {
				log.Error("Error stopping default scan scheduler", zap.Error(err))
			}
		}()
		defaultHandler.SetScheduler(scanScheduler)
		log.Info("Default scan scheduler started",
			zap.String("schedule", cfg.Scheduler.ScanCronSchedule),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
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
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Tenant - Resolve the tenant for API routes
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Tenant resolution for API routes
	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.SkipPaths = append(tenantConfig.SkipPaths,
		"/api/v1/system/ping",
		"/api/v1/system/info",
		"/api/v1/ping",
	)
	tenantConfig.Logger = log
	engine.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Ledger domain (contracts, payments, adjustments, defaults)
	ledgerRoutes := router.NewDomainGroup("ledger", "")

	// Contract routes
	ledgerRoutes.POST("/contracts", contractHandler.Create)
	ledgerRoutes.GET("/contracts", contractHandler.List)
	ledgerRoutes.GET("/contracts/:id", contractHandler.GetByID)
	ledgerRoutes.POST("/contracts/:id/cancel", contractHandler.Cancel)
	ledgerRoutes.GET("/contracts/:id/statement", contractHandler.GetStatement)
	ledgerRoutes.GET("/contracts/:id/entries", contractHandler.GetHistory)

	// Payment routes
	ledgerRoutes.POST("/contracts/:id/payments", paymentHandler.Process)

	// Adjustment routes
	ledgerRoutes.POST("/contracts/:id/adjustments", adjustmentHandler.Apply)
	ledgerRoutes.POST("/contracts/:id/entries/:entry_id/reverse", adjustmentHandler.Reverse)

	// Default tracking routes
	ledgerRoutes.GET("/contracts/:id/assessment", defaultHandler.Assess)
	ledgerRoutes.POST("/contracts/:id/penalties", defaultHandler.ApplyPenalty)
	ledgerRoutes.POST("/defaults/scan", defaultHandler.TriggerScan)
	ledgerRoutes.GET("/defaults/scheduler", defaultHandler.SchedulerStatus)

	r.Register(ledgerRoutes)

	// System routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
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
