package clickhouse

import (
	"context"
	"strings"

	"github.com/flexprice/orderlimit/internal/clickhouse"
	"github.com/flexprice/orderlimit/internal/domain/order"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/types"
)

// PurchaseHistoryRepository answers history aggregations from the flattened
// order_line_items_flat table, which carries each line item together with
// its order's user, state and creation time, the resolved spu and the
// spu's category ids.
type PurchaseHistoryRepository struct {
	store  *clickhouse.ClickHouseStore
	logger *logger.Logger
}

func NewPurchaseHistoryRepository(store *clickhouse.ClickHouseStore, logger *logger.Logger) order.PurchaseHistoryRepository {
	return &PurchaseHistoryRepository{
		store:  store,
		logger: logger,
	}
}

func (r *PurchaseHistoryRepository) SumPurchasedQuantity(ctx context.Context, query *types.PurchaseHistoryQuery) (int64, error) {
	if err := query.Validate(); err != nil {
		return 0, err
	}

	sql, args := buildPurchaseHistoryQuery(query)

	// sum() over no rows yields 0
	var total int64
	if err := r.store.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to aggregate purchase history").
			WithReportableDetails(map[string]any{
				"user_id":     query.UserID,
				"granularity": query.Target.Granularity,
				"target_id":   query.Target.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	r.logger.Debugw("aggregated purchase history from clickhouse",
		"user_id", query.UserID,
		"granularity", query.Target.Granularity,
		"target_id", query.Target.ID,
		"windowed", query.Window != nil,
		"total", total,
	)

	return total, nil
}

func buildPurchaseHistoryQuery(query *types.PurchaseHistoryQuery) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(`
		SELECT toInt64(sum(quantity))
		FROM order_line_items_flat FINAL
		WHERE user_id = ?
			AND order_state != ?`)

	args := []interface{}{query.UserID, string(types.OrderStateCanceled)}

	switch query.Target.Granularity {
	case types.LimitGranularitySKU:
		b.WriteString(`
			AND sku_id = ?`)
	case types.LimitGranularitySPU:
		b.WriteString(`
			AND spu_id = ?`)
	case types.LimitGranularityCategory:
		b.WriteString(`
			AND has(category_ids, ?)`)
	}
	args = append(args, query.Target.ID)

	if query.Window != nil {
		b.WriteString(`
			AND order_created_at BETWEEN ? AND ?`)
		args = append(args, query.Window.Start, query.Window.End)
	}

	if query.ExcludeOrderID != "" {
		b.WriteString(`
			AND order_id != ?`)
		args = append(args, query.ExcludeOrderID)
	}

	return b.String(), args
}
