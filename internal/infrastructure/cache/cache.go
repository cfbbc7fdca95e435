// Package cache holds short-lived read caches in front of the database.
// Values are JSON encoded so any backend can hold them.
package cache

import (
	"context"
	"time"

	"github.com/sanad/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Cache stores values of T keyed by string. Get returns nil, nil on a miss.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (*T, error)
	Set(ctx context.Context, key string, value *T) error
	Delete(ctx context.Context, key string) error
}

// Noop never stores anything
type Noop[T any] struct{}

func (Noop[T]) Get(context.Context, string) (*T, error) { return nil, nil }
func (Noop[T]) Set(context.Context, string, *T) error { return nil }
func (Noop[T]) Delete(context.Context, string) error { return nil }

// New picks a backend for one namespace: Redis when enabled, otherwise an
// in-process map. A zero ttl disables caching. The returned close function
// releases the Redis connection when this call opened it.
func New[T any](ctx context.Context, namespace string, ttl time.Duration, cfg config.RedisConfig, logger *zap.Logger) (Cache[T], func() error, error) {
	noClose := func() error { return nil }
	if ttl <= 0 {
		return Noop[T]{}, noClose, nil
	}
	if !cfg.Enabled {
		return NewMemoryCache[T](ttl), noClose, nil
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	c := NewRedisJSONCache[T](client, namespace, ttl,
		WithKeyPrefix(cfg.KeyPrefix),
		WithLogger(logger),
	)
	return c, client.Close, nil
}

var (
	_ Cache[string] = Noop[string]{}
	_ Cache[string] = (*MemoryCache[string])(nil)
	_ Cache[string] = (*RedisJSONCache[string])(nil)
)
