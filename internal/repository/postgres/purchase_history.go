package postgres

import (
	"context"
	"strings"

	"github.com/flexprice/orderlimit/internal/domain/order"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/postgres"
	"github.com/flexprice/orderlimit/internal/types"
)

type purchaseHistoryRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPurchaseHistoryRepository(db *postgres.DB, logger *logger.Logger) order.PurchaseHistoryRepository {
	return &purchaseHistoryRepository{db: db, logger: logger}
}

// resolved spu of a line item, falling back to the sku's parent
const lineItemSPU = "COALESCE(NULLIF(li.spu_id, ''), s.spu_id)"

func (r *purchaseHistoryRepository) SumPurchasedQuantity(ctx context.Context, query *types.PurchaseHistoryQuery) (int64, error) {
	if err := query.Validate(); err != nil {
		return 0, err
	}

	sql, params := buildPurchaseHistoryQuery(query)

	q := r.db.GetQuerier(ctx)
	bound, args, err := bindNamed(q, sql, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to build purchase history query").
			Mark(ierr.ErrSystem)
	}

	var total int64
	if err := q.GetContext(ctx, &total, bound, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to aggregate purchase history").
			WithReportableDetails(map[string]any{
				"user_id":     query.UserID,
				"granularity": query.Target.Granularity,
				"target_id":   query.Target.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	r.logger.Debugw("aggregated purchase history",
		"user_id", query.UserID,
		"granularity", query.Target.Granularity,
		"target_id", query.Target.ID,
		"windowed", query.Window != nil,
		"total", total,
	)

	return total, nil
}

func buildPurchaseHistoryQuery(query *types.PurchaseHistoryQuery) (string, map[string]interface{}) {
	var b strings.Builder
	b.WriteString(`
		SELECT COALESCE(SUM(li.quantity), 0)
		FROM order_line_items li
		JOIN orders o ON o.id = li.order_id
		LEFT JOIN skus s ON s.id = li.sku_id
		WHERE o.user_id = :user_id
			AND o.state <> :canceled_state`)

	params := map[string]interface{}{
		"user_id":        query.UserID,
		"canceled_state": string(types.OrderStateCanceled),
		"target_id":      query.Target.ID,
	}

	switch query.Target.Granularity {
	case types.LimitGranularitySKU:
		b.WriteString(`
			AND li.sku_id = :target_id`)
	case types.LimitGranularitySPU:
		b.WriteString(`
			AND ` + lineItemSPU + ` = :target_id`)
	case types.LimitGranularityCategory:
		b.WriteString(`
			AND EXISTS (
				SELECT 1 FROM spu_categories sc
				WHERE sc.spu_id = ` + lineItemSPU + `
					AND sc.category_id = :target_id
			)`)
	}

	if query.Window != nil {
		b.WriteString(`
			AND o.created_at BETWEEN :window_start AND :window_end`)
		params["window_start"] = query.Window.Start
		params["window_end"] = query.Window.End
	}

	if query.ExcludeOrderID != "" {
		b.WriteString(`
			AND o.id <> :exclude_order_id`)
		params["exclude_order_id"] = query.ExcludeOrderID
	}

	return b.String(), params
}
