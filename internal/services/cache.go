package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/config"
)

// CacheService caches expensive admin aggregates in Redis. A nil service
// is valid and behaves as an always-miss cache, so call sites never need
// to branch on whether caching is wired.
type CacheService struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewCacheService creates a new Redis-backed cache service
func NewCacheService(cfg config.RedisConfig, logger *logrus.Logger) *CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &CacheService{
		client: client,
		logger: logger,
	}
}

// GetJSON loads a cached value into dest, reporting whether it was a hit.
// Cache errors are logged and treated as misses.
func (c *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache entry unreadable")
		return false
	}

	return true
}

// SetJSON stores a value with a TTL, best-effort
func (c *CacheService) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache marshal failed")
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// Close releases the Redis connection
func (c *CacheService) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
