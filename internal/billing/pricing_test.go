package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLine(t *testing.T) {
	base, gst, total := PriceLine(100, 5, 2)
	assert.InDelta(t, 200.0, base, 1e-9)
	assert.InDelta(t, 10.0, gst, 1e-9)
	assert.InDelta(t, 210.0, total, 1e-9)
}

func TestPriceLineZeroQty(t *testing.T) {
	for _, tc := range []struct{ price, gst float64 }{{0, 0}, {99.5, 18}, {1e6, 100}} {
		base, gst, total := PriceLine(tc.price, tc.gst, 0)
		assert.Zero(t, base)
		assert.Zero(t, gst)
		assert.Zero(t, total)
	}
}

func TestPriceLineIdentity(t *testing.T) {
	for price := 0.0; price <= 500; price += 37.25 {
		for gstPct := 0.0; gstPct <= 100; gstPct += 12.5 {
			for qty := 0; qty <= 20; qty += 3 {
				base, gst, total := PriceLine(price, gstPct, qty)
				assert.InDelta(t, base+gst, total, 1e-9)
				assert.InDelta(t, base*gstPct/100, gst, 1e-9)
			}
		}
	}
}

func TestSummarizeOrderEmpty(t *testing.T) {
	for _, pct := range [][2]float64{{0, 0}, {10, 5}, {100, 100}} {
		s := SummarizeOrder(nil, pct[0], pct[1])
		assert.Zero(t, s.Subtotal)
		assert.Zero(t, s.DiscountAmount)
		assert.Zero(t, s.TipAmount)
		assert.Zero(t, s.FinalTotal)
	}
}

func TestSummarizeOrderDiscountThenTip(t *testing.T) {
	lines := []PricedLine{{LineTotal: 210.00}, {LineTotal: 94.50}}
	s := SummarizeOrder(lines, 10, 5)

	assert.InDelta(t, 304.50, s.Subtotal, 1e-9)
	assert.InDelta(t, 30.45, s.DiscountAmount, 1e-9)
	assert.InDelta(t, 13.70, Round2(s.TipAmount), 1e-9)
	assert.InDelta(t, 287.75, Round2(s.FinalTotal), 1e-9)

	assert.Equal(t, s, SummarizeOrder(lines, 10, 5))
}

func TestPriceCart(t *testing.T) {
	lookup := MenuIndex([]MenuItem{
		{ID: 1, Name: "Paneer Tikka", Price: 100, GSTRate: 5},
		{ID: 2, Name: "Cucumber Raita", Price: 90, GSTRate: 5},
	})

	lines, err := PriceCart(lookup, []SelectedLine{{ItemID: 2, Qty: 1}, {ItemID: 1, Qty: 0}, {ItemID: 1, Qty: 2}})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Cucumber Raita", lines[0].Name)
	assert.InDelta(t, 94.50, lines[0].LineTotal, 1e-9)
	assert.InDelta(t, 210.00, lines[1].LineTotal, 1e-9)

	_, err = PriceCart(lookup, []SelectedLine{{ItemID: 9, Qty: 1}})
	assert.ErrorIs(t, err, ErrItemNotFound)
}
