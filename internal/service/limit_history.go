package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/orderlimit/internal/domain/order"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/types"
)

const (
	historyRetryInitialInterval = 50 * time.Millisecond
	historyRetryMaxElapsed      = 2 * time.Second
)

// purchaseHistory reads aggregated purchase counts, retrying transient failures
type purchaseHistory struct {
	repo    order.PurchaseHistoryRepository
	logger  *logger.Logger
	retries uint64
}

func newPurchaseHistory(repo order.PurchaseHistoryRepository, logger *logger.Logger, retries uint64) *purchaseHistory {
	return &purchaseHistory{repo: repo, logger: logger, retries: retries}
}

// count returns how many units of target the user bought, optionally only
// within window. The order under evaluation is never counted.
func (h *purchaseHistory) count(ctx context.Context, evalCtx *EvaluationContext, target types.LimitTarget, window *types.TimeRange) (int64, error) {
	query := &types.PurchaseHistoryQuery{
		UserID: evalCtx.UserID,
		Target: target,
		Window: window,
	}
	if evalCtx.Order != nil {
		query.ExcludeOrderID = evalCtx.Order.ID
	}

	attempt := 0
	operation := func() (int64, error) {
		attempt++
		total, err := h.repo.SumPurchasedQuantity(ctx, query)
		if err == nil {
			return total, nil
		}
		if ctx.Err() != nil || ierr.IsValidation(err) {
			return 0, backoff.Permanent(err)
		}
		h.logger.Warnw("purchase history lookup failed",
			"user_id", query.UserID,
			"granularity", target.Granularity,
			"target_id", target.ID,
			"attempt", attempt,
			"error", err,
		)
		return 0, err
	}

	return backoff.RetryWithData(operation, h.newBackOff(ctx))
}

func (h *purchaseHistory) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = historyRetryInitialInterval
	exp.MaxElapsedTime = historyRetryMaxElapsed
	return backoff.WithContext(backoff.WithMaxRetries(exp, h.retries), ctx)
}
