package billing

import (
	"fmt"
	"time"
)

type State string

const (
	StateComposing       State = "COMPOSING"
	StatePaymentSelected State = "PAYMENT_SELECTED"
	StateSubmitted       State = "SUBMITTED"
	StatePersisted       State = "PERSISTED"
	StateCancelled       State = "CANCELLED"
)

var validNext = map[State]map[State]bool{
	StateComposing:       {StatePaymentSelected: true, StateCancelled: true},
	StatePaymentSelected: {StateComposing: true, StatePaymentSelected: true, StateSubmitted: true, StateCancelled: true},
	StateSubmitted:       {StatePersisted: true},
	StatePersisted:       {},
	StateCancelled:       {},
}

func CanTransition(from, to State) bool {
	return validNext[from][to]
}

// Composition is an order being put together. Transition methods mutate the
// receiver only when the move is allowed.
type Composition struct {
	ID          string         `json:"id"`
	State       State          `json:"state"`
	Mode        Mode           `json:"mode"`
	Items       []SelectedLine `json:"items"`
	DiscountPct float64        `json:"discount_pct"`
	TipPct      float64        `json:"tip_pct"`
	Payment     Payment        `json:"payment,omitempty"`
	Lines       []PricedLine   `json:"lines,omitempty"`
	Summary     *OrderSummary  `json:"summary,omitempty"`
	OrderID     int64          `json:"order_id,omitempty"`
	LastError   string         `json:"last_error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func NewComposition(id string, mode Mode, now time.Time) (*Composition, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, mode)
	}
	return &Composition{
		ID:        id,
		State:     StateComposing,
		Mode:      mode,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (c *Composition) editable() error {
	if c.State != StateComposing && c.State != StatePaymentSelected {
		return fmt.Errorf("%w: cannot edit in state %s", ErrInvalidTransition, c.State)
	}
	return nil
}

// reopen drops a pending payment selection and its frozen prices after the
// cart changed.
func (c *Composition) reopen(now time.Time) {
	c.State = StateComposing
	c.Payment = ""
	c.Lines = nil
	c.Summary = nil
	c.UpdatedAt = now
}

func (c *Composition) SetMode(mode Mode, now time.Time) error {
	if err := c.editable(); err != nil {
		return err
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, mode)
	}
	c.Mode = mode
	c.UpdatedAt = now
	return nil
}

// SetItems replaces the cart. Zero-quantity lines are kept out of the cart.
func (c *Composition) SetItems(lines []SelectedLine, now time.Time) error {
	if err := c.editable(); err != nil {
		return err
	}
	if err := ValidateLines(lines); err != nil {
		return err
	}
	items := make([]SelectedLine, 0, len(lines))
	for _, l := range lines {
		if l.Qty > 0 {
			items = append(items, l)
		}
	}
	c.Items = items
	c.reopen(now)
	return nil
}

func (c *Composition) SetAdjustments(discountPct, tipPct float64, now time.Time) error {
	if err := c.editable(); err != nil {
		return err
	}
	if err := ValidateAdjustments(discountPct, tipPct); err != nil {
		return err
	}
	c.DiscountPct = discountPct
	c.TipPct = tipPct
	c.reopen(now)
	return nil
}

// SelectPayment records the method together with the priced cart. From here
// on the amounts are frozen: later steps never recalculate them.
func (c *Composition) SelectPayment(p Payment, lines []PricedLine, summary OrderSummary, now time.Time) error {
	if !p.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, p)
	}
	if !CanTransition(c.State, StatePaymentSelected) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.State, StatePaymentSelected)
	}
	if len(c.Items) == 0 {
		return ErrEmptyOrder
	}
	c.Payment = p
	c.Lines = lines
	c.Summary = &summary
	c.State = StatePaymentSelected
	c.UpdatedAt = now
	return nil
}

// ConfirmPayment is the local acknowledgment that the customer paid.
func (c *Composition) ConfirmPayment(now time.Time) error {
	if !CanTransition(c.State, StateSubmitted) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.State, StateSubmitted)
	}
	c.State = StateSubmitted
	c.UpdatedAt = now
	return nil
}

func (c *Composition) MarkPersisted(orderID int64, now time.Time) error {
	if !CanTransition(c.State, StatePersisted) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.State, StatePersisted)
	}
	c.State = StatePersisted
	c.OrderID = orderID
	c.LastError = ""
	c.UpdatedAt = now
	return nil
}

// MarkFailed records a failed persist. The composition stays Submitted so it
// can be resubmitted as is.
func (c *Composition) MarkFailed(err error, now time.Time) {
	c.LastError = err.Error()
	c.UpdatedAt = now
}

func (c *Composition) Cancel(now time.Time) error {
	if !CanTransition(c.State, StateCancelled) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.State, StateCancelled)
	}
	c.State = StateCancelled
	c.UpdatedAt = now
	return nil
}
