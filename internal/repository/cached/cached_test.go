package cached

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/orderlimit/internal/cache"
	"github.com/flexprice/orderlimit/internal/config"
	"github.com/flexprice/orderlimit/internal/domain/catalog"
	"github.com/flexprice/orderlimit/internal/domain/limitrule"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRules struct {
	calls int
	rules []*limitrule.Rule
}

func (c *countingRules) ListByTarget(_ context.Context, _ types.LimitGranularity, _ string) ([]*limitrule.Rule, error) {
	c.calls++
	return c.rules, nil
}

type countingCatalog struct {
	calls int
	skus  map[string]*catalog.SKU
}

func (c *countingCatalog) GetSKU(_ context.Context, id string) (*catalog.SKU, error) {
	c.calls++
	if sku, ok := c.skus[id]; ok {
		return sku, nil
	}
	return nil, ierr.NewError("sku not found").Mark(ierr.ErrNotFound)
}

func (c *countingCatalog) GetSPU(context.Context, string) (*catalog.SPU, error) {
	c.calls++
	return &catalog.SPU{ID: "spu_1"}, nil
}

func (c *countingCatalog) ListCategoriesBySPU(context.Context, string) ([]*catalog.Category, error) {
	c.calls++
	return []*catalog.Category{{ID: "cat_1"}}, nil
}

func (c *countingCatalog) FindSKUByIDOrCode(ctx context.Context, value string) (*catalog.SKU, error) {
	return c.GetSKU(ctx, value)
}

func (c *countingCatalog) FindSPUByIDOrCode(ctx context.Context, value string) (*catalog.SPU, error) {
	return c.GetSPU(ctx, value)
}

func newCache() cache.Cache {
	cfg := config.GetDefaultConfig()
	cfg.Cache.TTL = time.Minute
	return cache.NewInMemoryCache(cfg, logger.NewNoopLogger())
}

func TestLimitRuleRepository_CachesPerTarget(t *testing.T) {
	ctx := context.Background()
	next := &countingRules{rules: []*limitrule.Rule{{ID: "r1"}}}
	repo := NewLimitRuleRepository(next, newCache(), logger.NewNoopLogger())

	for i := 0; i < 3; i++ {
		rules, err := repo.ListByTarget(ctx, types.LimitGranularitySKU, "sku_1")
		require.NoError(t, err)
		assert.Len(t, rules, 1)
	}
	assert.Equal(t, 1, next.calls)

	_, err := repo.ListByTarget(ctx, types.LimitGranularitySPU, "sku_1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCatalogRepository_DoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	next := &countingCatalog{skus: map[string]*catalog.SKU{"sku_1": {ID: "sku_1", SPUID: "spu_1"}}}
	repo := NewCatalogRepository(next, newCache(), logger.NewNoopLogger())

	sku, err := repo.GetSKU(ctx, "sku_1")
	require.NoError(t, err)
	assert.Equal(t, "spu_1", sku.SPUID)
	_, err = repo.GetSKU(ctx, "sku_1")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)

	_, err = repo.GetSKU(ctx, "missing")
	assert.True(t, ierr.IsNotFound(err))
	_, err = repo.GetSKU(ctx, "missing")
	assert.True(t, ierr.IsNotFound(err))
	assert.Equal(t, 3, next.calls)

	_, err = repo.ListCategoriesBySPU(ctx, "spu_1")
	require.NoError(t, err)
	_, err = repo.ListCategoriesBySPU(ctx, "spu_1")
	require.NoError(t, err)
	assert.Equal(t, 4, next.calls)
}
