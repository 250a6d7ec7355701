package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache defines the interface for caching operations
type Cache interface {
	// Get retrieves a value from the cache
	// Returns the value and a boolean indicating whether the key was found
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set adds a value to the cache with the specified expiration
	// If expiration is 0, the cache default applies
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
}

// Predefined cache key prefixes for different entity types
const (
	PrefixLimitRule     = "limit_rule:v1:"
	PrefixSKU           = "sku:v1:"
	PrefixSPU           = "spu:v1:"
	PrefixSKUByIDOrCode = "sku_lookup:v1:"
	PrefixSPUByIDOrCode = "spu_lookup:v1:"
	PrefixSPUCategories = "spu_categories:v1:"
)

// GenerateKey creates a cache key from a prefix and a set of parameters
// It joins all parameters with a colon and appends them to the prefix
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, len(params)+1)
	parts[0] = prefix

	for i, param := range params {
		parts[i+1] = fmt.Sprintf("%v", param)
	}

	return strings.Join(parts, ":")
}
