package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
	"github.com/ariefcatur/restaurant-billing/internal/orders"
	"github.com/ariefcatur/restaurant-billing/internal/sales"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

const dateLayout = "2006-01-02"

type AnalyticsRepo interface {
	SalesByDate(ctx context.Context, rg orders.Range) ([]orders.DailySales, error)
	SalesByPayment(ctx context.Context, rg orders.Range) ([]orders.PaymentSales, error)
	SalesByCategory(ctx context.Context, rg orders.Range) ([]orders.CategorySales, error)
	MostSoldItems(ctx context.Context, rg orders.Range, topN int) ([]orders.ItemSold, error)
	TotalRevenue(ctx context.Context, rg orders.Range) (float64, error)
	OrderCount(ctx context.Context, rg orders.Range) (int64, error)
}

type AnalyticsHandler struct {
	Repo     AnalyticsRepo
	Redis    *redis.Client
	Now      func() time.Time
	Location *time.Location
}

type SummaryResp struct {
	Revenue      float64 `json:"revenue"`
	Orders       int64   `json:"orders"`
	AverageOrder float64 `json:"average_order"`
}

func (h *AnalyticsHandler) Register(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/summary", h.summary)
		r.Get("/daily", h.daily)
		r.Get("/payments", h.payments)
		r.Get("/categories", h.categories)
		r.Get("/top-items", h.topItems)
		r.Get("/live", h.live)
	})
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// parseRange reads ?from=&to= as calendar days in loc; to covers its whole
// day.
func parseRange(r *http.Request, loc *time.Location) (orders.Range, error) {
	var rg orders.Range
	loc = orLocal(loc)
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return rg, fmt.Errorf("%w: from %q", billing.ErrInvalidInput, s)
		}
		rg.From = t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return rg, fmt.Errorf("%w: to %q", billing.ErrInvalidInput, s)
		}
		rg.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !rg.From.IsZero() && !rg.To.IsZero() && rg.To.Before(rg.From) {
		return rg, fmt.Errorf("%w: to before from", billing.ErrInvalidInput)
	}
	return rg, nil
}

// withRange runs a range query and writes its result, never null.
func withRange[T any](w http.ResponseWriter, r *http.Request, loc *time.Location, fn func(context.Context, orders.Range) ([]T, error)) {
	rg, err := parseRange(r, loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := fn(ctx, rg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []T{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AnalyticsHandler) summary(w http.ResponseWriter, r *http.Request) {
	rg, err := parseRange(r, h.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var resp SummaryResp
	if resp.Revenue, err = h.Repo.TotalRevenue(ctx, rg); err != nil {
		writeError(w, r, err)
		return
	}
	if resp.Orders, err = h.Repo.OrderCount(ctx, rg); err != nil {
		writeError(w, r, err)
		return
	}
	if resp.Orders > 0 {
		resp.AverageOrder = billing.Round2(resp.Revenue / float64(resp.Orders))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AnalyticsHandler) daily(w http.ResponseWriter, r *http.Request) {
	withRange(w, r, h.Location, h.Repo.SalesByDate)
}

func (h *AnalyticsHandler) payments(w http.ResponseWriter, r *http.Request) {
	withRange(w, r, h.Location, h.Repo.SalesByPayment)
}

func (h *AnalyticsHandler) categories(w http.ResponseWriter, r *http.Request) {
	withRange(w, r, h.Location, h.Repo.SalesByCategory)
}

func (h *AnalyticsHandler) topItems(w http.ResponseWriter, r *http.Request) {
	n := 5
	if s := r.URL.Query().Get("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > 100 {
			writeError(w, r, fmt.Errorf("%w: n %q", billing.ErrInvalidInput, s))
			return
		}
		n = v
	}
	withRange(w, r, h.Location, func(ctx context.Context, rg orders.Range) ([]orders.ItemSold, error) {
		return h.Repo.MostSoldItems(ctx, rg, n)
	})
}

func (h *AnalyticsHandler) live(w http.ResponseWriter, r *http.Request) {
	loc := orLocal(h.Location)
	day := time.Now()
	if h.Now != nil {
		day = h.Now()
	}
	day = day.In(loc)
	if s := r.URL.Query().Get("date"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: date %q", billing.ErrInvalidInput, s))
			return
		}
		day = t
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := sales.Live(ctx, h.Redis, day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
