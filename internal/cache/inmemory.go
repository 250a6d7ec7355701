package cache

import (
	"context"
	"time"

	"github.com/flexprice/orderlimit/internal/config"
	"github.com/flexprice/orderlimit/internal/logger"
	goCache "github.com/patrickmn/go-cache"
)

// DefaultExpiration is used when the configuration does not set a ttl
const DefaultExpiration = 5 * time.Minute

// DefaultCleanupInterval is how often expired items are removed from the cache
const DefaultCleanupInterval = 10 * time.Minute

// InMemoryCache implements the Cache interface using github.com/patrickmn/go-cache
type InMemoryCache struct {
	cache   *goCache.Cache
	enabled bool
	logger  *logger.Logger
}

// NewInMemoryCache creates a process local cache sized by the cache config
func NewInMemoryCache(cfg *config.Configuration, log *logger.Logger) *InMemoryCache {
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = DefaultExpiration
	}

	log.Infow("initializing in-memory cache",
		"enabled", cfg.Cache.Enabled,
		"ttl", ttl.String(),
	)

	return &InMemoryCache{
		cache:   goCache.New(ttl, DefaultCleanupInterval),
		enabled: cfg.Cache.Enabled,
		logger:  log,
	}
}

// Enabled reports whether reads and writes reach the underlying store
func (c *InMemoryCache) Enabled() bool {
	return c.enabled
}

// Get retrieves a value from the cache
func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	if !c.enabled {
		return nil, false
	}
	return c.cache.Get(key)
}

// Set adds a value to the cache with the specified expiration
func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	if !c.enabled {
		return
	}
	if expiration == 0 {
		expiration = goCache.DefaultExpiration
	}
	c.cache.Set(key, value, expiration)
}
