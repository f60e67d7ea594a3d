package billing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to cents. NaN and infinities are
// returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// BuildOrder packages a priced cart into the aggregate handed to the store.
// Zero-quantity lines are dropped; every monetary field is rounded to cents.
func BuildOrder(mode Mode, payment Payment, lines []PricedLine, summary OrderSummary, ts time.Time) OrderAggregate {
	agg := OrderAggregate{
		Header: OrderHeader{
			Mode:           mode,
			Payment:        payment,
			Timestamp:      ts,
			Subtotal:       Round2(summary.Subtotal),
			DiscountPct:    summary.DiscountPct,
			DiscountAmount: Round2(summary.DiscountAmount),
			TipPct:         summary.TipPct,
			TipAmount:      Round2(summary.TipAmount),
			Total:          Round2(summary.FinalTotal),
		},
		Lines: make([]OrderLine, 0, len(lines)),
	}
	for _, l := range lines {
		if l.Qty == 0 {
			continue
		}
		agg.Lines = append(agg.Lines, OrderLine{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice,
			GSTRate:   l.GSTRate,
			GSTAmount: Round2(l.GSTAmount),
			Total:     Round2(l.LineTotal),
		})
	}
	return agg
}
