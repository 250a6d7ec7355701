package cached

import (
	"context"

	"github.com/flexprice/orderlimit/internal/cache"
	"github.com/flexprice/orderlimit/internal/domain/catalog"
	"github.com/flexprice/orderlimit/internal/logger"
)

// catalogRepository caches successful catalog lookups. Errors, including
// not found, are never cached so new catalog rows show up immediately.
type catalogRepository struct {
	next   catalog.Repository
	cache  cache.Cache
	logger *logger.Logger
}

func NewCatalogRepository(next catalog.Repository, c cache.Cache, logger *logger.Logger) catalog.Repository {
	return &catalogRepository{next: next, cache: c, logger: logger}
}

func (r *catalogRepository) GetSKU(ctx context.Context, id string) (*catalog.SKU, error) {
	return cachedLookup(ctx, r, cache.GenerateKey(cache.PrefixSKU, id), func() (*catalog.SKU, error) {
		return r.next.GetSKU(ctx, id)
	})
}

func (r *catalogRepository) GetSPU(ctx context.Context, id string) (*catalog.SPU, error) {
	return cachedLookup(ctx, r, cache.GenerateKey(cache.PrefixSPU, id), func() (*catalog.SPU, error) {
		return r.next.GetSPU(ctx, id)
	})
}

func (r *catalogRepository) ListCategoriesBySPU(ctx context.Context, spuID string) ([]*catalog.Category, error) {
	return cachedLookup(ctx, r, cache.GenerateKey(cache.PrefixSPUCategories, spuID), func() ([]*catalog.Category, error) {
		return r.next.ListCategoriesBySPU(ctx, spuID)
	})
}

func (r *catalogRepository) FindSKUByIDOrCode(ctx context.Context, value string) (*catalog.SKU, error) {
	return cachedLookup(ctx, r, cache.GenerateKey(cache.PrefixSKUByIDOrCode, value), func() (*catalog.SKU, error) {
		return r.next.FindSKUByIDOrCode(ctx, value)
	})
}

func (r *catalogRepository) FindSPUByIDOrCode(ctx context.Context, value string) (*catalog.SPU, error) {
	return cachedLookup(ctx, r, cache.GenerateKey(cache.PrefixSPUByIDOrCode, value), func() (*catalog.SPU, error) {
		return r.next.FindSPUByIDOrCode(ctx, value)
	})
}

func cachedLookup[T any](ctx context.Context, r *catalogRepository, key string, load func() (T, error)) (T, error) {
	if v, ok := r.cache.Get(ctx, key); ok {
		if typed, ok := v.(T); ok {
			r.logger.Debugw("catalog cache hit", "key", key)
			return typed, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	r.cache.Set(ctx, key, v, 0)
	return v, nil
}
