package order

import (
	"time"

	"github.com/flexprice/orderlimit/internal/types"
)

// Order is the purchase being evaluated. The engine only reads it.
type Order struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	State     types.OrderState `db:"state" json:"state"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	LineItems []*LineItem      `db:"-" json:"line_items"`
}

// LineItem is a single sku purchased within an order
type LineItem struct {
	ID      string `db:"id" json:"id"`
	OrderID string `db:"order_id" json:"order_id"`
	SKUID   string `db:"sku_id" json:"sku_id"`
	// SPUID is optional, it is resolved through the catalog when empty
	SPUID    string `db:"spu_id" json:"spu_id,omitempty"`
	Quantity int64  `db:"quantity" json:"quantity"`
}
