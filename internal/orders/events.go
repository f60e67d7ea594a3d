package orders

import (
	"encoding/json"
	"time"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
)

const (
	EventOrderPlaced   = "OrderPlaced"
	EventOrdersCleared = "OrdersCleared"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID   int64           `json:"order_id"`
	Mode      billing.Mode    `json:"mode"`
	Payment   billing.Payment `json:"payment"`
	OrderedAt time.Time       `json:"ordered_at"`
	Total     float64         `json:"total"`
	Items     []ItemQty       `json:"items"`
}

type ItemQty struct {
	ItemID int64 `json:"item_id"`
	Qty    int   `json:"qty"`
}

type OrdersClearedPayload struct {
	Deleted   int64     `json:"deleted"`
	ClearedAt time.Time `json:"cleared_at"`
}
