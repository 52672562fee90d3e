package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/change-compliance/internal/config"
)

const completionKeyPrefix = "chat:completion:"

// Redis wraps the go-redis client.
type Redis struct {
	Client redis.UniversalClient
}

// NewRedis connects to Redis using the provided configuration. An unreachable
// server is logged, not fatal; readiness reports it.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// CompletionCache keeps chat completions in Redis for a fixed TTL.
type CompletionCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCompletionCache stores entries through r. A zero ttl keeps entries
// until evicted.
func NewCompletionCache(r *Redis, ttl time.Duration) *CompletionCache {
	return &CompletionCache{client: r.Client, ttl: ttl}
}

// Get returns the cached completion for key. A missing key is not an error.
func (c *CompletionCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, completionKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores a completion under key.
func (c *CompletionCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, completionKeyPrefix+key, value, c.ttl).Err()
}
