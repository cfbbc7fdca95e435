package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sanad/backend/internal/infrastructure/config"
	"github.com/sanad/backend/internal/infrastructure/logger"
	"github.com/sanad/backend/internal/interfaces/http/dto"
	"github.com/sanad/backend/internal/interfaces/http/handler"
	"github.com/sanad/backend/internal/interfaces/http/middleware"
	"github.com/ulule/limiter/v3"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const healthPath = "/health"

// EngineConfig carries what the HTTP layer needs besides its handlers
type EngineConfig struct {
	ServiceName    string
	HTTP           config.HTTPConfig
	CORS           config.CORSConfig
	Production     bool
	TracingEnabled bool
	TracerProvider trace.TracerProvider
	Tokens         middleware.TokenValidator
	// Meter feeds the HTTP metrics; nil disables them
	Meter metric.Meter
	// VerifyLimiter throttles the public verification route; nil disables it
	VerifyLimiter *limiter.Limiter
	Logger        *zap.Logger
}

// Handlers groups the HTTP handlers served by the engine
type Handlers struct {
	Receipts *handler.ReceiptHandler
	Verify   *handler.VerifyHandler
	System   *handler.SystemHandler
}

// NewEngine builds the gin engine with the middleware chain and all routes
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.Production

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log, healthPath),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.TracingEnabled,
			SkipPaths:      []string{healthPath},
			TracerProvider: cfg.TracerProvider,
		}),
		middleware.SpanEnricher(),
		middleware.HTTPMetrics(cfg.Meter, log),
		middleware.SecureWithConfig(security),
		middleware.CORS(cfg.CORS),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	// probes hit the bare path; the API table repeats it under /api/v1
	engine.GET(healthPath, h.System.Health)

	guards := Guards{
		Authenticated: {middleware.JWTAuthMiddlewareWithConfig(jwtConfig(cfg.Tokens, log))},
	}
	if cfg.VerifyLimiter != nil {
		guards[Throttled] = []gin.HandlerFunc{middleware.RateLimitWithConfig(middleware.RateLimitConfig{
			Limiter:        cfg.VerifyLimiter,
			OnLimitReached: h.Verify.RateLimited,
			Logger:         log,
		})}
	}
	Mount(engine, Routes(h), guards, log)

	return engine, nil
}

func jwtConfig(tokens middleware.TokenValidator, log *zap.Logger) middleware.JWTMiddlewareConfig {
	c := middleware.DefaultJWTConfig(tokens)
	c.Logger = log
	return c
}
