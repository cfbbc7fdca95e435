package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sanad/backend/internal/infrastructure/logger"
	"github.com/sanad/backend/internal/interfaces/http/dto"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// NewRateLimiter builds a limiter for the formatted rate (e.g. "60-M"). A
// non-nil client shares counters across replicas through Redis; otherwise
// counters live in process memory.
func NewRateLimiter(rate string, client *redis.Client, keyPrefix string) (*limiter.Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix: keyPrefix + "ratelimit",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          keyPrefix + "ratelimit",
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
	}
	return limiter.New(store, parsed), nil
}

// RateLimitConfig configures the rate limiting middleware
type RateLimitConfig struct {
	Limiter *limiter.Limiter
	// KeyFunc derives the bucket key; the client IP by default
	KeyFunc func(c *gin.Context) string
	// OnLimitReached writes the 429 response; a dto error by default
	OnLimitReached func(c *gin.Context)
	Logger         *zap.Logger
}

// RateLimit limits requests per client IP
func RateLimit(l *limiter.Limiter) gin.HandlerFunc {
	return RateLimitWithConfig(RateLimitConfig{Limiter: l})
}

// RateLimitWithConfig limits requests with a custom configuration. Store
// failures let the request through.
func RateLimitWithConfig(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests, please try again later",
				GetRequestID(c),
			))
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		lctx, err := cfg.Limiter.Get(c.Request.Context(), cfg.KeyFunc(c))
		if err != nil {
			logger.Enrich(c.Request.Context(), cfg.Logger).Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			cfg.OnLimitReached(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
