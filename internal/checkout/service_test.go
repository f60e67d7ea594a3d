package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
	"github.com/ariefcatur/restaurant-billing/internal/orders"
	"github.com/ariefcatur/restaurant-billing/internal/redisx"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMenu struct{ items []billing.MenuItem }

func (f *fakeMenu) ListMenu(context.Context, string) ([]billing.MenuItem, error) { return f.items, nil }

type fakeSaver struct {
	fail  error
	saved []billing.OrderAggregate
	byExt map[string]int64
}

func (f *fakeSaver) SaveOrder(_ context.Context, agg billing.OrderAggregate) (int64, bool, error) {
	if id, ok := f.byExt[agg.Header.ExternalID]; ok {
		return id, true, nil
	}
	if f.fail != nil {
		return 0, false, f.fail
	}
	f.saved = append(f.saved, agg)
	id := int64(100 + len(f.saved))
	f.byExt[agg.Header.ExternalID] = id
	return id, false, nil
}

// memStore round-trips through JSON so callers never share a pointer with it.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	fail error
}

func (m *memStore) Get(_ context.Context, id string) (*billing.Composition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[id]
	if !ok {
		return nil, redisx.ErrCompositionNotFound
	}
	var c billing.Composition
	return &c, json.Unmarshal(b, &c)
}

func (m *memStore) Put(_ context.Context, c *billing.Composition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	b, err := json.Marshal(c)
	m.data[c.ID] = b
	return err
}

type fakeLocker struct{ held map[string]bool }

func (f *fakeLocker) Lock(_ context.Context, key string) (func(context.Context), error) {
	if f.held[key] {
		return nil, redisx.ErrLocked
	}
	f.held[key] = true
	return func(context.Context) { delete(f.held, key) }, nil
}

type fakePublisher struct{ msgs []kafkago.Message }

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	f.msgs = append(f.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
}

type fixture struct {
	svc   *Service
	menu  *fakeMenu
	saver *fakeSaver
	store *memStore
	locks *fakeLocker
	pub   *fakePublisher
}

var clock = time.Date(2026, 10, 18, 19, 45, 30, 123456000, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		menu: &fakeMenu{items: []billing.MenuItem{
			{ID: 1, Name: "Paneer Tikka", Category: "Starters", Price: 100, GSTRate: 5},
			{ID: 2, Name: "Cucumber Raita", Category: "Sides", Price: 90, GSTRate: 5},
		}},
		saver: &fakeSaver{byExt: map[string]int64{}},
		store: &memStore{data: map[string][]byte{}},
		locks: &fakeLocker{held: map[string]bool{}},
		pub:   &fakePublisher{},
	}
	f.svc = &Service{
		Menu:         f.menu,
		Orders:       f.saver,
		Compositions: f.store,
		Locks:        f.locks,
		Events:       f.pub,
		Log:          zerolog.Nop(),
		ServiceName:  "billing-api",
		UPIVPA:       "imperial@okbank",
		PayeeName:    "Imperial Spice",
		Now:          func() time.Time { return clock },
	}
	return f
}

// confirmed walks a composition up to Submitted with two lines, 10% off, 5% tip.
func (f *fixture) confirmed(t *testing.T, p billing.Payment) string {
	t.Helper()
	ctx := context.Background()
	c, err := f.svc.Create(ctx, billing.ModeDineIn)
	require.NoError(t, err)
	_, err = f.svc.SetItems(ctx, c.ID, []billing.SelectedLine{{ItemID: 1, Qty: 2}, {ItemID: 2, Qty: 1}})
	require.NoError(t, err)
	_, err = f.svc.SetAdjustments(ctx, c.ID, 10, 5)
	require.NoError(t, err)
	_, _, err = f.svc.SelectPayment(ctx, c.ID, p)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, c.ID)
	require.NoError(t, err)
	return c.ID
}

func TestQuote(t *testing.T) {
	f := newFixture()
	q, err := f.svc.Quote(context.Background(), []billing.SelectedLine{{ItemID: 1, Qty: 2}, {ItemID: 2, Qty: 1}}, 10, 5)
	require.NoError(t, err)
	require.Len(t, q.Lines, 2)
	assert.InDelta(t, 304.50, q.Summary.Subtotal, 1e-9)
	assert.Equal(t, 287.75, billing.Round2(q.Summary.FinalTotal))

	_, err = f.svc.Quote(context.Background(), []billing.SelectedLine{{ItemID: 1, Qty: -1}}, 0, 0)
	assert.ErrorIs(t, err, billing.ErrInvalidInput)
	_, err = f.svc.Quote(context.Background(), []billing.SelectedLine{{ItemID: 1, Qty: 1}}, 0, 120)
	assert.ErrorIs(t, err, billing.ErrInvalidInput)
}

func TestSelectPaymentUPILink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c, err := f.svc.Create(ctx, billing.ModeTakeaway)
	require.NoError(t, err)
	_, err = f.svc.SetItems(ctx, c.ID, []billing.SelectedLine{{ItemID: 1, Qty: 2}, {ItemID: 2, Qty: 1}})
	require.NoError(t, err)
	_, err = f.svc.SetAdjustments(ctx, c.ID, 10, 5)
	require.NoError(t, err)

	got, link, err := f.svc.SelectPayment(ctx, c.ID, billing.PaymentUPI)
	require.NoError(t, err)
	assert.Equal(t, billing.StatePaymentSelected, got.State)
	assert.Contains(t, link, "am=287.75")
	assert.Contains(t, link, "tid=TXN20261018194530123456")

	_, link, err = f.svc.SelectPayment(ctx, c.ID, billing.PaymentCash)
	require.NoError(t, err)
	assert.Empty(t, link)
}

func TestSubmitPersistsOneOrder(t *testing.T) {
	f := newFixture()
	id := f.confirmed(t, billing.PaymentCard)

	res, err := f.svc.Submit(context.Background(), id, "req-1")
	require.NoError(t, err)
	assert.Equal(t, int64(101), res.OrderID)
	assert.Equal(t, 287.75, res.Total)
	assert.False(t, res.Idempotent)

	require.Len(t, f.saver.saved, 1)
	agg := f.saver.saved[0]
	assert.Equal(t, id, agg.Header.ExternalID)
	assert.Equal(t, 287.75, agg.Header.Total)
	assert.Equal(t, billing.PaymentCard, agg.Header.Payment)
	assert.Equal(t, clock, agg.Header.Timestamp)
	require.Len(t, agg.Lines, 2)
	assert.Equal(t, 210.0, agg.Lines[0].Total)
	assert.Equal(t, 94.5, agg.Lines[1].Total)

	c, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, billing.StatePersisted, c.State)
	assert.Equal(t, int64(101), c.OrderID)

	require.Len(t, f.pub.msgs, 1)
	var env orders.Envelope
	require.NoError(t, json.Unmarshal(f.pub.msgs[0].Value, &env))
	assert.Equal(t, orders.EventOrderPlaced, env.EventType)
	assert.Equal(t, "req-1", env.TraceID)
	assert.Equal(t, []byte("101"), f.pub.msgs[0].Key)
	var p orders.OrderPlacedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, 287.75, p.Total)
	assert.Len(t, p.Items, 2)
}

func TestSubmitTwiceReturnsSameOrder(t *testing.T) {
	f := newFixture()
	id := f.confirmed(t, billing.PaymentCash)

	first, err := f.svc.Submit(context.Background(), id, "")
	require.NoError(t, err)
	second, err := f.svc.Submit(context.Background(), id, "")
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.True(t, second.Idempotent)
	assert.Len(t, f.saver.saved, 1)
	assert.Len(t, f.pub.msgs, 1)
}

func TestSubmitFailureKeepsComposition(t *testing.T) {
	f := newFixture()
	id := f.confirmed(t, billing.PaymentUPI)
	f.saver.fail = errors.New("persistence failure: insert items: connection reset")

	_, err := f.svc.Submit(context.Background(), id, "")
	require.Error(t, err)

	c, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, billing.StateSubmitted, c.State)
	assert.True(t, strings.Contains(c.LastError, "connection reset"))
	assert.Len(t, c.Items, 2)
	assert.Empty(t, f.pub.msgs)
	assert.False(t, f.locks.held[lockKey(id)])

	f.saver.fail = nil
	res, err := f.svc.Submit(context.Background(), id, "")
	require.NoError(t, err)
	assert.Equal(t, 287.75, res.Total)
	assert.Len(t, f.saver.saved, 1)
}

func TestSubmitAfterStoreFailureDoesNotDuplicate(t *testing.T) {
	f := newFixture()
	id := f.confirmed(t, billing.PaymentCash)

	f.store.fail = errors.New("redis down")
	_, err := f.svc.Submit(context.Background(), id, "")
	require.NoError(t, err)

	// the composition still reads Submitted; the saver recognises the external id
	f.store.fail = nil
	res, err := f.svc.Submit(context.Background(), id, "")
	require.NoError(t, err)
	assert.True(t, res.Idempotent)
	assert.Len(t, f.saver.saved, 1)
	assert.Len(t, f.pub.msgs, 1)
}

func TestSubmitRejectsUnconfirmed(t *testing.T) {
	f := newFixture()
	c, err := f.svc.Create(context.Background(), billing.ModeDineIn)
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), c.ID, "")
	assert.ErrorIs(t, err, billing.ErrInvalidTransition)
	assert.Empty(t, f.saver.saved)
}

func TestSubmitWhileLocked(t *testing.T) {
	f := newFixture()
	id := f.confirmed(t, billing.PaymentCash)
	f.locks.held[lockKey(id)] = true

	_, err := f.svc.Submit(context.Background(), id, "")
	assert.ErrorIs(t, err, redisx.ErrLocked)
	assert.Empty(t, f.saver.saved)
}

func TestSelectPaymentUnknownItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c, err := f.svc.Create(ctx, billing.ModeDineIn)
	require.NoError(t, err)
	_, err = f.svc.SetItems(ctx, c.ID, []billing.SelectedLine{{ItemID: 1, Qty: 1}})
	require.NoError(t, err)

	f.menu.items = f.menu.items[1:] // item 1 deleted meanwhile
	_, _, err = f.svc.SelectPayment(ctx, c.ID, billing.PaymentCash)
	assert.ErrorIs(t, err, billing.ErrItemNotFound)

	got, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StateComposing, got.State)
}

func TestCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c, err := f.svc.Create(ctx, billing.ModeDineIn)
	require.NoError(t, err)

	got, err := f.svc.Cancel(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StateCancelled, got.State)

	id := f.confirmed(t, billing.PaymentCash)
	_, err = f.svc.Cancel(ctx, id)
	assert.ErrorIs(t, err, billing.ErrInvalidTransition)
}
