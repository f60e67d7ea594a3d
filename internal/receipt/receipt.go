package receipt

import (
	"fmt"
	"time"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
	"github.com/ariefcatur/restaurant-billing/internal/orders"
)

type Line struct {
	Name      string  `json:"item"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"price"`
	Total     float64 `json:"total"`
}

// Receipt is the printable view of a stored order. Subtotal is pre-GST.
type Receipt struct {
	OrderID   int64           `json:"order_id"`
	OrderedAt time.Time       `json:"ordered_at"`
	Mode      billing.Mode    `json:"mode"`
	Payment   billing.Payment `json:"payment"`
	Lines     []Line          `json:"items"`
	Subtotal  float64         `json:"subtotal"`
	GST       float64         `json:"gst"`
	Discount  float64         `json:"discount"`
	Tip       float64         `json:"tip"`
	Total     float64         `json:"total"`
}

type Business struct {
	Name    string
	Address string
	Contact string
}

// Build reconstructs a receipt from stored rows. Each line uses its own price
// snapshot when present, otherwise the current menu entry, otherwise a
// placeholder named "Item {id}" priced at 0.
func Build(o orders.Order, items []orders.OrderItem, menu billing.MenuLookup) Receipt {
	r := Receipt{
		OrderID:   o.ID,
		OrderedAt: o.OrderedAt,
		Mode:      o.Mode,
		Payment:   o.Payment,
		Lines:     make([]Line, 0, len(items)),
		Discount:  o.DiscountAmount,
		Tip:       o.TipAmount,
		Total:     o.Total,
	}
	var subtotal, gst float64
	for _, it := range items {
		name := fmt.Sprintf("Item %d", it.ItemID)
		var unit float64
		if m, ok := menu(it.ItemID); ok {
			name, unit = m.Name, m.Price
		}
		if it.Name != nil {
			name = *it.Name
		}
		if it.UnitPrice != nil {
			unit = *it.UnitPrice
		}

		base := unit * float64(it.Qty)
		lineGST := it.Total - base
		if it.GSTAmount != nil {
			lineGST = *it.GSTAmount
		}
		subtotal += base
		gst += lineGST

		r.Lines = append(r.Lines, Line{Name: name, Qty: it.Qty, UnitPrice: unit, Total: it.Total})
	}
	r.Subtotal = billing.Round2(subtotal)
	r.GST = billing.Round2(gst)
	return r
}
