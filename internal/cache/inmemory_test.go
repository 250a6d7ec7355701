package cache

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/orderlimit/internal/config"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/stretchr/testify/assert"
)

func newTestCache(enabled bool) *InMemoryCache {
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = enabled
	cfg.Cache.TTL = time.Minute
	return NewInMemoryCache(cfg, logger.NewNoopLogger())
}

func TestInMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(true)

	key := GenerateKey(PrefixSKU, "sku_1")
	assert.Equal(t, "sku:v1::sku_1", key)

	c.Set(ctx, key, "value", 0)
	got, ok := c.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, "value", got)

	_, ok = c.Get(ctx, GenerateKey(PrefixSKU, "sku_2"))
	assert.False(t, ok)
}

func TestInMemoryCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(true)

	c.Set(ctx, "short", 1, time.Millisecond)
	c.Set(ctx, "default", 2, 0)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "short")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "default")
	assert.True(t, ok)
}

func TestInMemoryCache_Disabled(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(false)

	c.Set(ctx, "k", "v", 0)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.False(t, c.Enabled())
}
