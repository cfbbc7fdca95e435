package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	voucherapp "github.com/sanad/backend/internal/application/voucher"
	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/sanad/backend/internal/infrastructure/auth"
	"github.com/sanad/backend/internal/infrastructure/cache"
	"github.com/sanad/backend/internal/infrastructure/config"
	"github.com/sanad/backend/internal/infrastructure/logger"
	"github.com/sanad/backend/internal/infrastructure/persistence"
	"github.com/sanad/backend/internal/infrastructure/storage"
	"github.com/sanad/backend/internal/infrastructure/telemetry"
	"github.com/sanad/backend/internal/infrastructure/voucherpdf"
	"github.com/sanad/backend/internal/interfaces/http/handler"
	"github.com/sanad/backend/internal/interfaces/http/middleware"
	"github.com/sanad/backend/internal/interfaces/http/router"
	"github.com/ulule/limiter/v3"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OpenTelemetry export. Signals left off keep the global no-op providers.
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, version, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := tel.Bridge(baseLog, logger.ParseLevel(cfg.Log.Level))
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Sanad voucher backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(ctx); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	if cfg.Database.Driver == "sqlite" {
		dbTracing.DBSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	renderMetrics, err := telemetry.NewRenderMetrics(tel.Meter("sanad/voucher"))
	if err != nil {
		log.Fatal("Failed to create render metrics", zap.Error(err))
	}

	// Document storage
	store, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}
	log.Info("Document storage ready", zap.String("driver", store.Driver()))

	// Verification cache and, with Redis enabled, a shared rate limit store
	verifyCache, closeCache, err := cache.New[voucher.PublicReceipt](ctx, "verify", cfg.Verify.CacheTTL, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize verification cache", zap.Error(err))
	}
	defer func() {
		if err := closeCache(); err != nil {
			log.Error("Error closing verification cache", zap.Error(err))
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Enabled && cfg.Verify.RateLimitEnabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
	}

	compositor, err := voucherpdf.NewCompositorFromConfig(cfg.Render, renderMetrics, log)
	if err != nil {
		log.Fatal("Failed to initialize voucher compositor", zap.Error(err))
	}

	// Repositories and application services
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)

	renderService := voucherapp.NewRenderService(receiptRepo, orgRepo, compositor, store, renderMetrics, log)
	verificationService := voucherapp.NewVerificationService(receiptRepo, orgRepo, verifyCache, renderMetrics, log)

	var verifyLimiter *limiter.Limiter
	if cfg.Verify.RateLimitEnabled {
		verifyLimiter, err = middleware.NewRateLimiter(cfg.Verify.RateLimit, redisClient, cfg.Redis.KeyPrefix)
		if err != nil {
			log.Fatal("Failed to create verification rate limiter", zap.Error(err))
		}
		log.Info("Verification rate limit enabled",
			zap.String("rate", cfg.Verify.RateLimit),
			zap.Bool("shared_store", redisClient != nil),
		)
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var httpMeter metric.Meter
	if tel.MetricsEnabled() {
		httpMeter = tel.Meter("http.server")
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		HTTP:           cfg.HTTP,
		CORS:           cfg.CORS,
		Production:     cfg.App.IsProduction(),
		TracingEnabled: tel.TracingEnabled(),
		Tokens:         auth.NewJWTService(cfg.JWT),
		Meter:          httpMeter,
		VerifyLimiter:  verifyLimiter,
		Logger:         log,
	}, router.Handlers{
		Receipts: handler.NewReceiptHandler(renderService),
		Verify:   handler.NewVerifyHandler(verificationService),
		System:   handler.NewSystemHandler(db, cfg.App.Name, version),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	// last, so the records above are still exported
	if err := tel.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Telemetry shutdown failed", zap.Error(err))
	}
}
