package service

import (
	"context"

	"github.com/flexprice/orderlimit/internal/domain/catalog"
	"github.com/flexprice/orderlimit/internal/domain/limitrule"
	"github.com/flexprice/orderlimit/internal/domain/order"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/types"
)

// enforceMutex rejects the item when the rule's conflicting item is in the
// same order (sku rules only) or anywhere in the user's purchase history.
func (c *limitChecker) enforceMutex(ctx context.Context, rule *limitrule.Rule, evalCtx *EvaluationContext) (*LimitViolation, error) {
	conflict, err := c.resolveMutexTarget(ctx, rule.Value)
	if err != nil {
		if ierr.IsNotFound(err) && ctx.Err() == nil {
			c.logger.Warnw("mutex target not found, treating rule as passed",
				"rule_id", rule.ID,
				"granularity", c.granularity,
				"value", rule.Value,
			)
			return nil, nil
		}
		return nil, c.lookupFailure(ctx, rule, err)
	}
	conflictID := conflict.GetID()

	if c.granularity == types.LimitGranularitySKU {
		if item := findConflictingLineItem(evalCtx, conflictID); item != nil {
			return newMutexViolation(types.LimitViolationKindMutexCurrentOrder, c.granularity, rule.ID, conflictID, item.Quantity, c.messages.mutex()), nil
		}
	}

	target := types.LimitTarget{Granularity: c.granularity, ID: conflictID}
	count, err := c.history.count(ctx, evalCtx, target, nil)
	if err != nil {
		return nil, c.lookupFailure(ctx, rule, err)
	}
	if count > 0 {
		return newMutexViolation(types.LimitViolationKindMutexHistory, c.granularity, rule.ID, conflictID, count, c.messages.mutex()), nil
	}
	return nil, nil
}

// resolveMutexTarget looks the rule value up as an id or an external code
func (c *limitChecker) resolveMutexTarget(ctx context.Context, value string) (catalog.Item, error) {
	if c.granularity == types.LimitGranularitySPU {
		spu, err := c.catalog.FindSPUByIDOrCode(ctx, value)
		if err != nil {
			return nil, err
		}
		return spu, nil
	}

	sku, err := c.catalog.FindSKUByIDOrCode(ctx, value)
	if err != nil {
		return nil, err
	}
	return sku, nil
}

// findConflictingLineItem returns another line item of the order holding the
// conflicting sku. An item never conflicts with its own sku.
func findConflictingLineItem(evalCtx *EvaluationContext, conflictSKUID string) *order.LineItem {
	if conflictSKUID == evalCtx.SKUID {
		return nil
	}
	for _, item := range evalCtx.Order.LineItems {
		if item == evalCtx.LineItem {
			continue
		}
		if item.SKUID == conflictSKUID {
			return item
		}
	}
	return nil
}
