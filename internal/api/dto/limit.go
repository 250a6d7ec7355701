package dto

import (
	"time"

	"github.com/flexprice/orderlimit/internal/domain/order"
	"github.com/flexprice/orderlimit/internal/types"
	"github.com/flexprice/orderlimit/internal/validator"
	"github.com/samber/lo"
)

// CheckOrderRequest asks whether an order may be placed under the purchase limits
type CheckOrderRequest struct {
	Order OrderRequest `json:"order" validate:"required"`
}

type OrderRequest struct {
	ID        string            `json:"id" validate:"required"`
	UserID    string            `json:"user_id" validate:"required"`
	State     types.OrderState  `json:"state,omitempty"`
	CreatedAt *time.Time        `json:"created_at,omitempty"`
	LineItems []LineItemRequest `json:"line_items" validate:"required,min=1,dive"`
}

type LineItemRequest struct {
	ID       string `json:"id" validate:"required"`
	SKUID    string `json:"sku_id" validate:"required"`
	SPUID    string `json:"spu_id,omitempty"`
	Quantity int64  `json:"quantity" validate:"gte=0"`
}

func (r *CheckOrderRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Order.State != "" {
		if err := r.Order.State.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToOrder converts the request into the order under evaluation. A missing
// state means the order is being created.
func (r *CheckOrderRequest) ToOrder() *order.Order {
	o := &order.Order{
		ID:        r.Order.ID,
		UserID:    r.Order.UserID,
		State:     lo.Ternary(r.Order.State == "", types.OrderStateCreated, r.Order.State),
		CreatedAt: lo.FromPtrOr(r.Order.CreatedAt, time.Now().UTC()),
	}
	o.LineItems = lo.Map(r.Order.LineItems, func(item LineItemRequest, _ int) *order.LineItem {
		return &order.LineItem{
			ID:       item.ID,
			OrderID:  o.ID,
			SKUID:    item.SKUID,
			SPUID:    item.SPUID,
			Quantity: item.Quantity,
		}
	})
	return o
}

type CheckOrderResponse struct {
	Allowed bool `json:"allowed"`
}
