package billing

import "fmt"

// PriceLine returns the pre-GST total, the GST on it and their sum.
// Inputs are not validated; qty 0 yields all zeros.
func PriceLine(price, gstPct float64, qty int) (baseTotal, gstAmount, lineTotal float64) {
	baseTotal = price * float64(qty)
	gstAmount = baseTotal * gstPct / 100
	lineTotal = baseTotal + gstAmount
	return baseTotal, gstAmount, lineTotal
}

// SummarizeOrder applies the discount to the GST-inclusive subtotal, then the
// tip to the discounted amount.
func SummarizeOrder(lines []PricedLine, discountPct, tipPct float64) OrderSummary {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.LineTotal
	}
	discount := subtotal * discountPct / 100
	discounted := subtotal - discount
	tip := discounted * tipPct / 100
	return OrderSummary{
		Subtotal:       subtotal,
		DiscountPct:    discountPct,
		DiscountAmount: discount,
		TipPct:         tipPct,
		TipAmount:      tip,
		FinalTotal:     discounted + tip,
	}
}

// MenuLookup resolves a menu item by id.
type MenuLookup func(id int64) (MenuItem, bool)

// PriceCart prices every non-zero line against the menu, preserving order.
// Line totals are rounded to cents the same way they are displayed and persisted.
func PriceCart(lookup MenuLookup, selected []SelectedLine) ([]PricedLine, error) {
	out := make([]PricedLine, 0, len(selected))
	for _, s := range selected {
		if s.Qty == 0 {
			continue
		}
		item, ok := lookup(s.ItemID)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrItemNotFound, s.ItemID)
		}
		base, gst, total := PriceLine(item.Price, item.GSTRate, s.Qty)
		out = append(out, PricedLine{
			ItemID:    item.ID,
			Name:      item.Name,
			Qty:       s.Qty,
			UnitPrice: item.Price,
			GSTRate:   item.GSTRate,
			BaseTotal: base,
			GSTAmount: Round2(gst),
			LineTotal: Round2(total),
		})
	}
	return out, nil
}

// MenuIndex builds a MenuLookup over a slice of items.
func MenuIndex(items []MenuItem) MenuLookup {
	byID := make(map[int64]MenuItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return func(id int64) (MenuItem, bool) {
		it, ok := byID[id]
		return it, ok
	}
}
