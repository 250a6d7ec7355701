package order

import (
	"context"

	"github.com/flexprice/orderlimit/internal/types"
)

// PurchaseHistoryRepository aggregates a user's past purchases
type PurchaseHistoryRepository interface {
	// SumPurchasedQuantity sums line item quantities of the user's non canceled
	// orders matching the query target. Returns 0 when nothing matches.
	SumPurchasedQuantity(ctx context.Context, query *types.PurchaseHistoryQuery) (int64, error)
}
