package service

import (
	"time"

	"github.com/flexprice/orderlimit/internal/config"
	"github.com/flexprice/orderlimit/internal/domain/catalog"
	"github.com/flexprice/orderlimit/internal/domain/limitrule"
	"github.com/flexprice/orderlimit/internal/domain/order"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	// DB provides read snapshots. Nil disables snapshot reads.
	DB postgres.IClient

	// Repositories
	LimitRuleRepo       limitrule.Repository
	CatalogRepo         catalog.Repository
	PurchaseHistoryRepo order.PurchaseHistoryRepository

	// Clock returns the evaluation instant, time.Now when nil
	Clock func() time.Time
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	limitRuleRepo limitrule.Repository,
	catalogRepo catalog.Repository,
	purchaseHistoryRepo order.PurchaseHistoryRepository,
) ServiceParams {
	return ServiceParams{
		Logger:              logger,
		Config:              config,
		DB:                  db,
		LimitRuleRepo:       limitRuleRepo,
		CatalogRepo:         catalogRepo,
		PurchaseHistoryRepo: purchaseHistoryRepo,
		Clock:               time.Now,
	}
}
