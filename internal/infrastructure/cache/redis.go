package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sanad/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisJSONCache stores JSON encoded values under prefix+namespace+":"+key
type RedisJSONCache[T any] struct {
	client    redis.Cmdable
	prefix    string
	namespace string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisOption configures a RedisJSONCache
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix string
	logger *zap.Logger
}

// WithKeyPrefix sets the global key prefix, e.g. "sanad:"
func WithKeyPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

// WithLogger sets the logger for the cache
func WithLogger(logger *zap.Logger) RedisOption {
	return func(o *redisOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewRedisJSONCache wraps an existing client. The caller keeps ownership of it.
func NewRedisJSONCache[T any](client redis.Cmdable, namespace string, ttl time.Duration, opts ...RedisOption) *RedisJSONCache[T] {
	o := redisOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisJSONCache[T]{
		client:    client,
		prefix:    o.prefix,
		namespace: namespace,
		ttl:       ttl,
		logger:    o.logger,
	}
}

func (c *RedisJSONCache[T]) key(key string) string {
	return c.prefix + c.namespace + ":" + key
}

// Get returns nil, nil on a miss. A corrupt entry is deleted and reported as a miss.
func (c *RedisJSONCache[T]) Get(ctx context.Context, key string) (*T, error) {
	cacheKey := c.key(key)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss", zap.String("key", cacheKey))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from cache: %w", cacheKey, err)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		c.logger.Warn("Dropping corrupt cache entry",
			zap.String("key", cacheKey),
			zap.Error(err))
		_ = c.client.Del(ctx, cacheKey).Err()
		return nil, nil
	}

	c.logger.Debug("Cache hit", zap.String("key", cacheKey))
	return &value, nil
}

// Set stores value with the cache TTL. A nil value is ignored.
func (c *RedisJSONCache[T]) Set(ctx context.Context, key string, value *T) error {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", c.key(key), err)
	}
	return nil
}

// Delete removes key
func (c *RedisJSONCache[T]) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from cache: %w", c.key(key), err)
	}
	return nil
}
