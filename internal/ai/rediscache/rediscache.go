// Package rediscache stores generated AI text in redis so that several
// processes share one bounded cache.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/ai"
	"github.com/ensa-hoceima/hr-assistant/internal/logger"
)

const DefaultPrefix = "hr-assistant:ai:"

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// Cache implements ai.Cache. Redis failures degrade to cache misses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

var _ ai.Cache = (*Cache)(nil)

func New(opts Options, log *zap.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return NewWithClient(client, opts.TTL, opts.Prefix, log)
}

func NewWithClient(client *redis.Client, ttl time.Duration, prefix string, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = ai.DefaultCacheTTL
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		prefix: prefix,
		logger: logger.OrNop(log).Named("rediscache"),
	}
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis get failed", zap.Error(err))
		}
		return "", false
	}
	return value, true
}

func (c *Cache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", zap.Error(err))
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}
