package cached

import (
	"context"

	"github.com/flexprice/orderlimit/internal/cache"
	"github.com/flexprice/orderlimit/internal/domain/limitrule"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/types"
)

// limitRuleRepository caches rule lookups per target
type limitRuleRepository struct {
	next   limitrule.Repository
	cache  cache.Cache
	logger *logger.Logger
}

func NewLimitRuleRepository(next limitrule.Repository, c cache.Cache, logger *logger.Logger) limitrule.Repository {
	return &limitRuleRepository{next: next, cache: c, logger: logger}
}

func (r *limitRuleRepository) ListByTarget(ctx context.Context, granularity types.LimitGranularity, targetID string) ([]*limitrule.Rule, error) {
	key := cache.GenerateKey(cache.PrefixLimitRule, granularity, targetID)
	if v, ok := r.cache.Get(ctx, key); ok {
		if rules, ok := v.([]*limitrule.Rule); ok {
			r.logger.Debugw("limit rules cache hit", "key", key)
			return rules, nil
		}
	}

	rules, err := r.next.ListByTarget(ctx, granularity, targetID)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, key, rules, 0)
	return rules, nil
}
