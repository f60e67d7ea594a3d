package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
	kafkax "github.com/ariefcatur/restaurant-billing/internal/kafka"
	"github.com/ariefcatur/restaurant-billing/internal/orders"
	"github.com/ariefcatur/restaurant-billing/internal/receipt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type OrdersRepo interface {
	GetOrder(ctx context.Context, orderID int64) (orders.Order, error)
	ListOrders(ctx context.Context, f orders.OrderFilter) ([]orders.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]orders.OrderItem, error)
	ClearOrders(ctx context.Context) (int64, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Repo     OrdersRepo
	Menu     MenuReader
	Business receipt.Business
	Producer Publisher
	Service  string
	// Location is the business day used for ?from=&to=.
	Location *time.Location
}

type OrderDetail struct {
	orders.Order
	Items []orders.OrderItem `json:"items"`
}

type ClearResp struct {
	Deleted int64 `json:"deleted"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Delete("/orders", h.clearOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/receipt.pdf", h.receiptPDF)
	r.Get("/orders/{id}/receipt.csv", h.receiptCSV)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	rg, err := parseRange(r, h.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f := orders.OrderFilter{Range: rg}
	if s := r.URL.Query().Get("order_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, r, fmt.Errorf("%w: order_id %q", billing.ErrInvalidInput, s))
			return
		}
		f.OrderID = id
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Repo.ListOrders(ctx, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.GetOrder(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.Repo.GetOrderItems(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderDetail{Order: o, Items: items})
}

// loadReceipt rebuilds a receipt from the stored order. A menu that cannot
// be read only costs the fallback names.
func (h *OrdersHandler) loadReceipt(ctx context.Context, id int64) (receipt.Receipt, error) {
	o, err := h.Repo.GetOrder(ctx, id)
	if err != nil {
		return receipt.Receipt{}, err
	}
	items, err := h.Repo.GetOrderItems(ctx, id)
	if err != nil {
		return receipt.Receipt{}, err
	}
	menu, _ := h.Menu.ListMenu(ctx, "")
	return receipt.Build(o, items, billing.MenuIndex(menu)), nil
}

func (h *OrdersHandler) receiptPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rc, err := h.loadReceipt(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := receipt.RenderPDF(rc, h.Business)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt_%d.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *OrdersHandler) receiptCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rc, err := h.loadReceipt(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := receipt.RenderCSV(rc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt_%d.csv"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s))
}

func (h *OrdersHandler) clearOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	n, err := h.Repo.ClearOrders(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := time.Now().UTC()
	ev := orders.Envelope{
		EventID:      uuid.NewString(),
		EventType:    orders.EventOrdersCleared,
		EventVersion: 1,
		OccurredAt:   now,
		Producer:     h.Service,
		TraceID:      middleware.GetReqID(r.Context()),
		Payload:      kafkax.MustMarshal(orders.OrdersClearedPayload{Deleted: n, ClearedAt: now}),
	}
	h.Producer.Publish(orders.ClearKey, kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrdersCleared)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusOK, ClearResp{Deleted: n})
}
