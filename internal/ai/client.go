package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/logger"
	"github.com/ensa-hoceima/hr-assistant/internal/metrics"
)

// Client fronts a Provider with a bounded cache, logging and metrics. It is
// safe for concurrent use when the cache is.
type Client struct {
	provider  Provider
	cache     Cache
	logger    *zap.Logger
	metrics   *metrics.Metrics
	maxLogLen int
}

// Option customizes a Client.
type Option func(*Client)

func WithCache(cache Cache) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithMaxLogLength(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxLogLen = n
		}
	}
}

// NewClient wraps provider. Without WithCache an in-memory cache with default
// bounds is used.
func NewClient(provider Provider, opts ...Option) *Client {
	c := &Client{
		provider:  provider,
		maxLogLen: logger.DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewMemoryCache(DefaultCacheSize, DefaultCacheTTL)
	}
	c.logger = logger.WithCommonFields(c.logger, provider.Name(), provider.Model())
	return c
}

// GenerateText returns the provider's answer for prompt, consulting the cache
// first and populating it after a successful call.
func (c *Client) GenerateText(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	req := Request{Prompt: prompt, MaxTokens: maxTokens, Temperature: temperature}
	key := CacheKey(c.provider.Name(), req)

	if cached, ok := c.cache.Get(ctx, key); ok {
		c.logger.Debug("ai cache hit", zap.Int("max_tokens", maxTokens), zap.Float64("temperature", temperature))
		c.metrics.ObserveAI(c.provider.Name(), metrics.OutcomeCacheHit, 0)
		return cached, nil
	}

	c.logger.Info("generating ai text",
		append(logger.TextPreview("prompt", prompt, c.maxLogLen),
			zap.Int("max_tokens", maxTokens),
			zap.Float64("temperature", temperature),
		)...,
	)

	started := time.Now()
	raw, err := c.provider.Generate(ctx, req)
	elapsed := time.Since(started)
	if err != nil {
		outcome := metrics.OutcomeError
		if IsColdStart(err) {
			outcome = metrics.OutcomeColdStart
		}
		c.metrics.ObserveAI(c.provider.Name(), outcome, elapsed)
		c.logger.Error("ai generation failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return "", fmt.Errorf("generate text with %s: %w", c.provider.Name(), err)
	}

	c.metrics.ObserveAI(c.provider.Name(), metrics.OutcomeOK, elapsed)

	text := strings.TrimSpace(raw)
	c.logger.Debug("ai text generated",
		append(logger.TextPreview("response", text, c.maxLogLen), zap.Duration("elapsed", elapsed))...,
	)

	c.cache.Set(ctx, key, text)
	return text, nil
}

// ProviderName returns the configured provider tag.
func (c *Client) ProviderName() string { return c.provider.Name() }

// Model returns the model used by the provider.
func (c *Client) Model() string { return c.provider.Model() }
