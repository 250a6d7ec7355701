package limitrule

import (
	"context"

	"github.com/flexprice/orderlimit/internal/types"
)

// Repository defines the interface for limit rule storage operations
type Repository interface {
	// ListByTarget returns the active rules attached to one sku, spu or category
	ListByTarget(ctx context.Context, granularity types.LimitGranularity, targetID string) ([]*Rule, error)
}
