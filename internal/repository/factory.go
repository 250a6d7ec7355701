package repository

import (
	"github.com/flexprice/orderlimit/internal/cache"
	"github.com/flexprice/orderlimit/internal/clickhouse"
	"github.com/flexprice/orderlimit/internal/config"
	"github.com/flexprice/orderlimit/internal/domain/catalog"
	"github.com/flexprice/orderlimit/internal/domain/limitrule"
	"github.com/flexprice/orderlimit/internal/domain/order"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/postgres"
	cachedRepo "github.com/flexprice/orderlimit/internal/repository/cached"
	clickhouseRepo "github.com/flexprice/orderlimit/internal/repository/clickhouse"
	fileRepo "github.com/flexprice/orderlimit/internal/repository/file"
	postgresRepo "github.com/flexprice/orderlimit/internal/repository/postgres"
	"github.com/flexprice/orderlimit/internal/types"
	"go.uber.org/fx"
)

// RepositoryParams holds the backends repositories are built on.
// ClickHouse is nil unless purchase history is served from it.
type RepositoryParams struct {
	fx.In

	Config     *config.Configuration
	Logger     *logger.Logger
	DB         *postgres.DB
	ClickHouse *clickhouse.ClickHouseStore `optional:"true"`
	Cache      cache.Cache
}

func NewPurchaseHistoryRepository(p RepositoryParams) (order.PurchaseHistoryRepository, error) {
	switch p.Config.Limit.HistorySource {
	case types.HistorySourceClickHouse:
		if p.ClickHouse == nil {
			return nil, ierr.NewError("clickhouse store is not configured").
				WithHint("Purchase history source is clickhouse but no clickhouse connection is available").
				Mark(ierr.ErrSystem)
		}
		return clickhouseRepo.NewPurchaseHistoryRepository(p.ClickHouse, p.Logger), nil
	default:
		return postgresRepo.NewPurchaseHistoryRepository(p.DB, p.Logger), nil
	}
}

func NewLimitRuleRepository(p RepositoryParams) (limitrule.Repository, error) {
	switch p.Config.Limit.RuleSource {
	case types.RuleSourceFile:
		// file rules are already in memory
		return fileRepo.NewLimitRuleRepository(p.Config.Limit.RuleFile, p.Logger)
	default:
		repo := postgresRepo.NewLimitRuleRepository(p.DB, p.Logger)
		return cachedRepo.NewLimitRuleRepository(repo, p.Cache, p.Logger), nil
	}
}

func NewCatalogRepository(p RepositoryParams) catalog.Repository {
	repo := postgresRepo.NewCatalogRepository(p.DB, p.Logger)
	return cachedRepo.NewCatalogRepository(repo, p.Cache, p.Logger)
}
