package billing

import "time"

type Mode string

const (
	ModeDineIn   Mode = "Dine-In"
	ModeTakeaway Mode = "Takeaway"
)

func (m Mode) Valid() bool { return m == ModeDineIn || m == ModeTakeaway }

type Payment string

const (
	PaymentCash Payment = "Cash"
	PaymentCard Payment = "Card"
	PaymentUPI  Payment = "UPI"
)

func (p Payment) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

type MenuItem struct {
	ID       int64   `json:"item_id"`
	Name     string  `json:"item_name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	GSTRate  float64 `json:"gst_rate"`
	ImageURL string  `json:"image_url"`
}

// SelectedLine is a cart entry while an order is being composed.
type SelectedLine struct {
	ItemID int64 `json:"item_id"`
	Qty    int   `json:"qty"`
}

type PricedLine struct {
	ItemID    int64   `json:"item_id"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	GSTRate   float64 `json:"gst_rate"`
	BaseTotal float64 `json:"base_total"`
	GSTAmount float64 `json:"gst_amount"`
	LineTotal float64 `json:"line_total"`
}

// OrderSummary.Subtotal is GST-inclusive: the sum of line totals before discount.
type OrderSummary struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountPct    float64 `json:"discount_pct"`
	DiscountAmount float64 `json:"discount_amount"`
	TipPct         float64 `json:"tip_pct"`
	TipAmount      float64 `json:"tip_amount"`
	FinalTotal     float64 `json:"final_total"`
}

type OrderHeader struct {
	// ExternalID makes a submission idempotent: one order per composition.
	ExternalID     string    `json:"external_id,omitempty"`
	Mode           Mode      `json:"mode"`
	Payment        Payment   `json:"payment"`
	Timestamp      time.Time `json:"timestamp"`
	Subtotal       float64   `json:"subtotal"`
	DiscountPct    float64   `json:"discount_pct"`
	DiscountAmount float64   `json:"discount_amount"`
	TipPct         float64   `json:"tip_pct"`
	TipAmount      float64   `json:"tip_amount"`
	Total          float64   `json:"total"`
}

// OrderLine is one persisted order_items row, including the price snapshot
// taken at order time.
type OrderLine struct {
	ItemID    int64   `json:"item_id"`
	Name      string  `json:"item_name"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	GSTRate   float64 `json:"gst_rate"`
	GSTAmount float64 `json:"gst_amount"`
	Total     float64 `json:"total"`
}

// OrderAggregate is what the store persists atomically: one header, its lines.
type OrderAggregate struct {
	Header OrderHeader `json:"header"`
	Lines  []OrderLine `json:"lines"`
}
