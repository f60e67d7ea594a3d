// Package checkout drives an order from composition to a persisted record.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
	kafkax "github.com/ariefcatur/restaurant-billing/internal/kafka"
	"github.com/ariefcatur/restaurant-billing/internal/orders"
	"github.com/ariefcatur/restaurant-billing/internal/redisx"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

type MenuSource interface {
	ListMenu(ctx context.Context, category string) ([]billing.MenuItem, error)
}

type OrderSaver interface {
	SaveOrder(ctx context.Context, agg billing.OrderAggregate) (orderID int64, existed bool, err error)
}

type CompositionStore interface {
	Get(ctx context.Context, id string) (*billing.Composition, error)
	Put(ctx context.Context, c *billing.Composition) error
}

type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(context.Context), err error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Menu         MenuSource
	Orders       OrderSaver
	Compositions CompositionStore
	Locks        Locker
	Events       Publisher
	Log          zerolog.Logger
	ServiceName  string
	UPIVPA       string
	PayeeName    string
	Now          func() time.Time
}

type Quote struct {
	Lines   []billing.PricedLine `json:"lines"`
	Summary billing.OrderSummary `json:"summary"`
}

type Result struct {
	OrderID    int64   `json:"order_id"`
	Total      float64 `json:"total"`
	Idempotent bool    `json:"idempotent"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) price(ctx context.Context, items []billing.SelectedLine, discountPct, tipPct float64) (Quote, error) {
	menu, err := s.Menu.ListMenu(ctx, "")
	if err != nil {
		return Quote{}, fmt.Errorf("load menu: %w", err)
	}
	lines, err := billing.PriceCart(billing.MenuIndex(menu), items)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Lines: lines, Summary: billing.SummarizeOrder(lines, discountPct, tipPct)}, nil
}

// Quote prices a cart without creating anything.
func (s *Service) Quote(ctx context.Context, items []billing.SelectedLine, discountPct, tipPct float64) (Quote, error) {
	if err := billing.ValidateLines(items); err != nil {
		return Quote{}, err
	}
	if err := billing.ValidateAdjustments(discountPct, tipPct); err != nil {
		return Quote{}, err
	}
	return s.price(ctx, items, discountPct, tipPct)
}

func (s *Service) Create(ctx context.Context, mode billing.Mode) (*billing.Composition, error) {
	c, err := billing.NewComposition(uuid.NewString(), mode, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Compositions.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*billing.Composition, error) {
	return s.Compositions.Get(ctx, id)
}

func lockKey(id string) string { return fmt.Sprintf(redisx.KeyCompositionLock, id) }

// mutate runs fn on the stored composition under its lock and saves the
// result only when fn succeeds.
func (s *Service) mutate(ctx context.Context, id string, fn func(c *billing.Composition, now time.Time) error) (*billing.Composition, error) {
	unlock, err := s.Locks.Lock(ctx, lockKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock(context.WithoutCancel(ctx))

	c, err := s.Compositions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c, s.now()); err != nil {
		return nil, err
	}
	if err := s.Compositions.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) SetMode(ctx context.Context, id string, mode billing.Mode) (*billing.Composition, error) {
	return s.mutate(ctx, id, func(c *billing.Composition, now time.Time) error {
		return c.SetMode(mode, now)
	})
}

func (s *Service) SetItems(ctx context.Context, id string, items []billing.SelectedLine) (*billing.Composition, error) {
	return s.mutate(ctx, id, func(c *billing.Composition, now time.Time) error {
		return c.SetItems(items, now)
	})
}

func (s *Service) SetAdjustments(ctx context.Context, id string, discountPct, tipPct float64) (*billing.Composition, error) {
	return s.mutate(ctx, id, func(c *billing.Composition, now time.Time) error {
		return c.SetAdjustments(discountPct, tipPct, now)
	})
}

// SelectPayment prices the cart against the current menu and freezes the
// result on the composition. For UPI it also returns the payment link for
// the exact amount that will be persisted.
func (s *Service) SelectPayment(ctx context.Context, id string, p billing.Payment) (*billing.Composition, string, error) {
	c, err := s.mutate(ctx, id, func(c *billing.Composition, now time.Time) error {
		q, err := s.price(ctx, c.Items, c.DiscountPct, c.TipPct)
		if err != nil {
			return err
		}
		return c.SelectPayment(p, q.Lines, q.Summary, now)
	})
	if err != nil {
		return nil, "", err
	}
	var link string
	if p == billing.PaymentUPI {
		now := s.now()
		txn := fmt.Sprintf("TXN%s%06d", now.Format("20060102150405"), now.Nanosecond()/1000)
		link = billing.UPILink(s.UPIVPA, s.PayeeName, billing.Round2(c.Summary.FinalTotal), txn)
	}
	return c, link, nil
}

func (s *Service) Confirm(ctx context.Context, id string) (*billing.Composition, error) {
	return s.mutate(ctx, id, func(c *billing.Composition, now time.Time) error {
		return c.ConfirmPayment(now)
	})
}

func (s *Service) Cancel(ctx context.Context, id string) (*billing.Composition, error) {
	return s.mutate(ctx, id, func(c *billing.Composition, now time.Time) error {
		return c.Cancel(now)
	})
}

// Submit persists a confirmed composition. A failed write leaves it
// Submitted with the error recorded so the caller can resubmit; nothing is
// retried here. Submitting an already persisted composition returns the
// same order.
func (s *Service) Submit(ctx context.Context, id, traceID string) (Result, error) {
	unlock, err := s.Locks.Lock(ctx, lockKey(id))
	if err != nil {
		return Result{}, err
	}
	defer unlock(context.WithoutCancel(ctx))

	c, err := s.Compositions.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if c.Summary == nil || (c.State != billing.StateSubmitted && c.State != billing.StatePersisted) {
		return Result{}, fmt.Errorf("%w: cannot submit in state %s", billing.ErrInvalidTransition, c.State)
	}
	if c.State == billing.StatePersisted {
		return Result{OrderID: c.OrderID, Total: billing.Round2(c.Summary.FinalTotal), Idempotent: true}, nil
	}

	now := s.now()
	agg := billing.BuildOrder(c.Mode, c.Payment, c.Lines, *c.Summary, now)
	agg.Header.ExternalID = c.ID

	orderID, existed, err := s.Orders.SaveOrder(ctx, agg)
	if err != nil {
		s.Log.Error().Err(err).Str("composition_id", id).Msg("order persist failed")
		c.MarkFailed(err, now)
		if perr := s.Compositions.Put(ctx, c); perr != nil {
			s.Log.Error().Err(perr).Str("composition_id", id).Msg("record submit failure")
		}
		return Result{}, err
	}

	if err := c.MarkPersisted(orderID, now); err != nil {
		return Result{}, err
	}
	if err := s.Compositions.Put(ctx, c); err != nil {
		// the order row is committed; external_id keeps a resubmit from duplicating it
		s.Log.Warn().Err(err).Str("composition_id", id).Int64("order_id", orderID).Msg("store persisted composition")
	}
	if !existed {
		s.publishPlaced(orderID, agg, traceID)
	}
	s.Log.Info().Int64("order_id", orderID).Str("composition_id", id).
		Float64("total", agg.Header.Total).Str("payment", string(agg.Header.Payment)).Msg("order placed")

	return Result{OrderID: orderID, Total: agg.Header.Total, Idempotent: existed}, nil
}

func (s *Service) publishPlaced(orderID int64, agg billing.OrderAggregate, traceID string) {
	if s.Events == nil {
		return
	}
	items := make([]orders.ItemQty, 0, len(agg.Lines))
	for _, l := range agg.Lines {
		items = append(items, orders.ItemQty{ItemID: l.ItemID, Qty: l.Qty})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    s.now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID,
		CorrelationID: fmt.Sprint(orderID),
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:   orderID,
			Mode:      agg.Header.Mode,
			Payment:   agg.Header.Payment,
			OrderedAt: agg.Header.Timestamp,
			Total:     agg.Header.Total,
			Items:     items,
		}),
	}
	s.Events.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
