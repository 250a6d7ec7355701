package types

import (
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/samber/lo"
)

// OrderState is the lifecycle state of an order. Only canceled orders are
// left out of purchase history.
type OrderState string

const (
	OrderStateCreated   OrderState = "CREATED"
	OrderStatePaid      OrderState = "PAID"
	OrderStateShipped   OrderState = "SHIPPED"
	OrderStateCompleted OrderState = "COMPLETED"
	OrderStateCanceled  OrderState = "CANCELED"
)

func (s OrderState) String() string {
	return string(s)
}

func (s OrderState) Validate() error {
	allowed := []OrderState{
		OrderStateCreated,
		OrderStatePaid,
		OrderStateShipped,
		OrderStateCompleted,
		OrderStateCanceled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid order state").
			WithHint("Order state is not supported").
			WithReportableDetails(map[string]any{
				"state":   s,
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CountsTowardsLimits reports whether purchases in this state are counted
func (s OrderState) CountsTowardsLimits() bool {
	return s != OrderStateCanceled
}
