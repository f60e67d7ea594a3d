package orders

import (
	"time"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
)

type Order struct {
	ID             int64           `json:"order_id"`
	ExternalID     *string         `json:"external_id,omitempty"`
	Mode           billing.Mode    `json:"mode"`
	Payment        billing.Payment `json:"payment"`
	OrderedAt      time.Time       `json:"timestamp"`
	Subtotal       float64         `json:"subtotal"`
	DiscountPct    float64         `json:"discount_pct"`
	DiscountAmount float64         `json:"discount_amount"`
	TipPct         float64         `json:"tip_pct"`
	TipAmount      float64         `json:"tip_amount"`
	Total          float64         `json:"total"`
}

// OrderItem is a stored order line. The snapshot fields are nil for rows
// written before snapshots were recorded.
type OrderItem struct {
	OrderID   int64    `json:"order_id"`
	ItemID    int64    `json:"item_id"`
	Qty       int      `json:"qty"`
	Total     float64  `json:"total"`
	Name      *string  `json:"item_name,omitempty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	GSTRate   *float64 `json:"gst_rate,omitempty"`
	GSTAmount *float64 `json:"gst_amount,omitempty"`
}

// Range bounds a query on order time, both ends inclusive. A zero Range
// matches everything.
type Range struct {
	From time.Time
	To   time.Time
}

type OrderFilter struct {
	Range
	OrderID int64
}

type DailySales struct {
	Date  time.Time `json:"date"`
	Sales float64   `json:"sales"`
}

type PaymentSales struct {
	Payment billing.Payment `json:"payment"`
	Sales   float64         `json:"sales"`
}

type CategorySales struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
}

type ItemSold struct {
	ItemID int64  `json:"item_id"`
	Name   string `json:"item_name"`
	Qty    int64  `json:"qty"`
}
