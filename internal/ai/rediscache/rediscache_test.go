package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSetGet(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewWithClient(client, time.Minute, "", nil)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "missing")
	assert.False(t, ok)

	cache.Set(ctx, "huggingface_prompt_600_0.7", "answer")
	value, ok := cache.Get(ctx, "huggingface_prompt_600_0.7")
	require.True(t, ok)
	assert.Equal(t, "answer", value)

	assert.True(t, mr.Exists(DefaultPrefix+"huggingface_prompt_600_0.7"))
	assert.Equal(t, time.Minute, mr.TTL(DefaultPrefix+"huggingface_prompt_600_0.7"))
}

func TestEntriesExpire(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewWithClient(client, time.Minute, "test:", nil)
	ctx := context.Background()

	cache.Set(ctx, "k", "v")
	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
}

func TestUnavailableRedisIsMiss(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewWithClient(client, time.Minute, "", nil)
	require.NoError(t, cache.Ping(context.Background()))

	mr.Close()

	cache.Set(context.Background(), "k", "v")
	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.Error(t, cache.Ping(context.Background()))
}
