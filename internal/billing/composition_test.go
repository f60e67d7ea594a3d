package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

var (
	frozenLines   = []PricedLine{{ItemID: 1, Name: "Paneer Tikka", Qty: 2, UnitPrice: 100, GSTRate: 5, BaseTotal: 200, GSTAmount: 10, LineTotal: 210}}
	frozenSummary = SummarizeOrder(frozenLines, 0, 0)
)

func composed(t *testing.T) *Composition {
	t.Helper()
	c, err := NewComposition("c1", ModeDineIn, t0)
	require.NoError(t, err)
	require.NoError(t, c.SetItems([]SelectedLine{{ItemID: 1, Qty: 2}, {ItemID: 2, Qty: 0}}, t0))
	return c
}

func TestCompositionHappyPath(t *testing.T) {
	c := composed(t)
	assert.Equal(t, []SelectedLine{{ItemID: 1, Qty: 2}}, c.Items)

	require.NoError(t, c.SelectPayment(PaymentCard, frozenLines, frozenSummary, t0))
	assert.Equal(t, StatePaymentSelected, c.State)
	require.NotNil(t, c.Summary)
	assert.Equal(t, 210.0, c.Summary.FinalTotal)

	require.NoError(t, c.ConfirmPayment(t0))
	assert.Equal(t, StateSubmitted, c.State)

	c.MarkFailed(errors.New("db down"), t0)
	assert.Equal(t, StateSubmitted, c.State)
	assert.Equal(t, "db down", c.LastError)
	assert.Len(t, c.Items, 1)

	require.NoError(t, c.MarkPersisted(42, t0))
	assert.Equal(t, StatePersisted, c.State)
	assert.Equal(t, int64(42), c.OrderID)
	assert.Empty(t, c.LastError)
}

func TestCompositionEditResetsPayment(t *testing.T) {
	c := composed(t)
	require.NoError(t, c.SelectPayment(PaymentUPI, frozenLines, frozenSummary, t0))
	require.NoError(t, c.SetAdjustments(10, 5, t0))
	assert.Equal(t, StateComposing, c.State)
	assert.Empty(t, c.Payment)
	assert.Nil(t, c.Summary)
	assert.Nil(t, c.Lines)
}

func TestCompositionRejects(t *testing.T) {
	c, err := NewComposition("c2", ModeTakeaway, t0)
	require.NoError(t, err)

	assert.ErrorIs(t, c.SelectPayment(PaymentCash, frozenLines, frozenSummary, t0), ErrEmptyOrder)
	assert.ErrorIs(t, c.SelectPayment("Cheque", frozenLines, frozenSummary, t0), ErrInvalidInput)
	assert.ErrorIs(t, c.ConfirmPayment(t0), ErrInvalidTransition)
	assert.ErrorIs(t, c.SetItems([]SelectedLine{{ItemID: 1, Qty: 21}}, t0), ErrInvalidInput)
	assert.ErrorIs(t, c.SetItems([]SelectedLine{{ItemID: 1, Qty: 1}, {ItemID: 1, Qty: 2}}, t0), ErrInvalidInput)
	assert.ErrorIs(t, c.SetAdjustments(101, 0, t0), ErrInvalidInput)

	_, err = NewComposition("c3", "Delivery", t0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompositionCancel(t *testing.T) {
	c := composed(t)
	require.NoError(t, c.Cancel(t0))
	assert.ErrorIs(t, c.SetItems(nil, t0), ErrInvalidTransition)

	c = composed(t)
	require.NoError(t, c.SelectPayment(PaymentCash, frozenLines, frozenSummary, t0))
	require.NoError(t, c.ConfirmPayment(t0))
	assert.ErrorIs(t, c.Cancel(t0), ErrInvalidTransition)
	require.NoError(t, c.MarkPersisted(7, t0))
	assert.ErrorIs(t, c.Cancel(t0), ErrInvalidTransition)
	assert.ErrorIs(t, c.SetItems(nil, t0), ErrInvalidTransition)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StateComposing, StatePaymentSelected))
	assert.True(t, CanTransition(StateSubmitted, StatePersisted))
	assert.False(t, CanTransition(StateComposing, StateSubmitted))
	assert.False(t, CanTransition(StatePersisted, StateCancelled))
	assert.False(t, CanTransition(StateSubmitted, StateCancelled))
}

func TestValidateMenuItem(t *testing.T) {
	ok := MenuItem{Name: "Dal Makhani", Category: "Mains", Price: 220, GSTRate: 5}
	assert.NoError(t, ValidateMenuItem(ok))

	bad := ok
	bad.Name = "  "
	assert.ErrorIs(t, ValidateMenuItem(bad), ErrInvalidInput)
	bad = ok
	bad.Price = -1
	assert.ErrorIs(t, ValidateMenuItem(bad), ErrInvalidInput)
	bad = ok
	bad.GSTRate = 120
	assert.ErrorIs(t, ValidateMenuItem(bad), ErrInvalidInput)
}

func TestUPILink(t *testing.T) {
	got := UPILink("imperial@okbank", "Imperial Spice", 287.7525, "TXN1")
	assert.Equal(t, "upi://pay?pa=imperial%40okbank&pn=Imperial+Spice&am=287.75&tid=TXN1&cu=INR", got)
}
