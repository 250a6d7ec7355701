package service

import (
	"context"

	"github.com/flexprice/orderlimit/internal/domain/catalog"
	"github.com/flexprice/orderlimit/internal/domain/order"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/samber/lo"
)

// EvaluationContext is what a rule is checked against. It is built per line
// item (and per category for category rules) and never persisted.
type EvaluationContext struct {
	Order    *order.Order
	LineItem *order.LineItem
	UserID   string
	SKUID    string
	Quantity int64

	// SPUID is empty when the sku has no parent product
	SPUID              string
	SPUQuantityInOrder int64

	CategoryID              string
	CategoryQuantityInOrder int64
}

// orderCatalog resolves catalog relations of one order's line items and
// memoizes them for the duration of a single check. It is not safe for
// concurrent use; contexts are built before rules run.
type orderCatalog struct {
	catalog catalog.Repository
	logger  *logger.Logger
	order   *order.Order

	spuByItem       map[*order.LineItem]string
	categoriesBySPU map[string][]string
}

func newOrderCatalog(repo catalog.Repository, logger *logger.Logger, o *order.Order) *orderCatalog {
	return &orderCatalog{
		catalog:         repo,
		logger:          logger,
		order:           o,
		spuByItem:       make(map[*order.LineItem]string),
		categoriesBySPU: make(map[string][]string),
	}
}

// spuOf returns the line item's product. An unknown sku or a sku without a
// parent yields "". Only context errors are returned.
func (c *orderCatalog) spuOf(ctx context.Context, item *order.LineItem) (string, error) {
	if item.SPUID != "" {
		return item.SPUID, nil
	}
	if spuID, ok := c.spuByItem[item]; ok {
		return spuID, nil
	}

	sku, err := c.catalog.GetSKU(ctx, item.SKUID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if ierr.IsNotFound(err) {
			c.logger.Debugw("sku not found in catalog, skipping product relations",
				"sku_id", item.SKUID,
				"line_item_id", item.ID,
			)
		} else {
			c.logger.Warnw("failed to resolve spu of sku, skipping product relations",
				"sku_id", item.SKUID,
				"line_item_id", item.ID,
				"error", err,
			)
		}
		c.spuByItem[item] = ""
		return "", nil
	}

	c.spuByItem[item] = sku.SPUID
	return sku.SPUID, nil
}

// categoriesOf returns the category ids of a product, empty on lookup failure
func (c *orderCatalog) categoriesOf(ctx context.Context, spuID string) ([]string, error) {
	if spuID == "" {
		return nil, nil
	}
	if ids, ok := c.categoriesBySPU[spuID]; ok {
		return ids, nil
	}

	categories, err := c.catalog.ListCategoriesBySPU(ctx, spuID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warnw("failed to resolve categories of spu, skipping category rules",
			"spu_id", spuID,
			"error", err,
		)
		c.categoriesBySPU[spuID] = nil
		return nil, nil
	}

	ids := lo.Uniq(lo.Map(categories, func(category *catalog.Category, _ int) string {
		return category.GetID()
	}))
	c.categoriesBySPU[spuID] = ids
	return ids, nil
}

// spuQuantity sums the quantities of every line item of the order that
// belongs to the product
func (c *orderCatalog) spuQuantity(ctx context.Context, spuID string) (int64, error) {
	var total int64
	for _, item := range c.order.LineItems {
		itemSPU, err := c.spuOf(ctx, item)
		if err != nil {
			return 0, err
		}
		if itemSPU == spuID {
			total += item.Quantity
		}
	}
	return total, nil
}

// categoryQuantity sums the quantities of every line item of the order whose
// product belongs to the category
func (c *orderCatalog) categoryQuantity(ctx context.Context, categoryID string) (int64, error) {
	var total int64
	for _, item := range c.order.LineItems {
		itemSPU, err := c.spuOf(ctx, item)
		if err != nil {
			return 0, err
		}
		categories, err := c.categoriesOf(ctx, itemSPU)
		if err != nil {
			return 0, err
		}
		if lo.Contains(categories, categoryID) {
			total += item.Quantity
		}
	}
	return total, nil
}

// baseContext validates the relations every check needs. It returns nil when
// the order, user or sku is missing, which means there is nothing to check.
func baseContext(logger *logger.Logger, o *order.Order, item *order.LineItem) *EvaluationContext {
	switch {
	case o == nil || item == nil:
		logger.Debugw("no order or line item, skipping limit checks")
		return nil
	case o.UserID == "":
		logger.Debugw("order has no user, skipping limit checks", "order_id", o.ID)
		return nil
	case item.SKUID == "":
		logger.Debugw("line item has no sku, skipping limit checks",
			"order_id", o.ID,
			"line_item_id", item.ID,
		)
		return nil
	}

	return &EvaluationContext{
		Order:    o,
		LineItem: item,
		UserID:   o.UserID,
		SKUID:    item.SKUID,
		Quantity: item.Quantity,
	}
}
