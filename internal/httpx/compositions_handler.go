package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
	"github.com/ariefcatur/restaurant-billing/internal/checkout"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type CompositionsHandler struct {
	Svc *checkout.Service
}

type QuoteReq struct {
	Items       []billing.SelectedLine `json:"items"`
	DiscountPct float64                `json:"discount_pct"`
	TipPct      float64                `json:"tip_pct"`
}

type ModeReq struct {
	Mode billing.Mode `json:"mode"`
}

type ItemsReq struct {
	Items []billing.SelectedLine `json:"items"`
}

type AdjustmentsReq struct {
	DiscountPct float64 `json:"discount_pct"`
	TipPct      float64 `json:"tip_pct"`
}

type PaymentReq struct {
	Payment billing.Payment `json:"payment"`
}

type PaymentResp struct {
	*billing.Composition
	UPILink string `json:"upi_link,omitempty"`
}

func (h *CompositionsHandler) Register(r chi.Router) {
	r.Post("/quote", h.quote)
	r.Route("/compositions", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}/mode", h.setMode)
		r.Put("/{id}/items", h.setItems)
		r.Put("/{id}/adjustments", h.setAdjustments)
		r.Put("/{id}/payment", h.selectPayment)
		r.Post("/{id}/confirm", h.confirm)
		r.Post("/{id}/submit", h.submit)
		r.Delete("/{id}", h.cancel)
	})
}

func (h *CompositionsHandler) quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteReq
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q, err := h.Svc.Quote(ctx, req.Items, req.DiscountPct, req.TipPct)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *CompositionsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req ModeReq
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Svc.Create(ctx, req.Mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CompositionsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Svc.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// respond writes the composition returned by a state change.
func respond(w http.ResponseWriter, r *http.Request, c *billing.Composition, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CompositionsHandler) setMode(w http.ResponseWriter, r *http.Request) {
	var req ModeReq
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	c, err := h.Svc.SetMode(ctx, chi.URLParam(r, "id"), req.Mode)
	respond(w, r, c, err)
}

func (h *CompositionsHandler) setItems(w http.ResponseWriter, r *http.Request) {
	var req ItemsReq
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	c, err := h.Svc.SetItems(ctx, chi.URLParam(r, "id"), req.Items)
	respond(w, r, c, err)
}

func (h *CompositionsHandler) setAdjustments(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentsReq
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	c, err := h.Svc.SetAdjustments(ctx, chi.URLParam(r, "id"), req.DiscountPct, req.TipPct)
	respond(w, r, c, err)
}

func (h *CompositionsHandler) selectPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentReq
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, link, err := h.Svc.SelectPayment(ctx, chi.URLParam(r, "id"), req.Payment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PaymentResp{Composition: c, UPILink: link})
}

func (h *CompositionsHandler) confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	c, err := h.Svc.Confirm(ctx, chi.URLParam(r, "id"))
	respond(w, r, c, err)
}

func (h *CompositionsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	c, err := h.Svc.Cancel(ctx, chi.URLParam(r, "id"))
	respond(w, r, c, err)
}

func (h *CompositionsHandler) submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.Submit(ctx, chi.URLParam(r, "id"), middleware.GetReqID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	code := http.StatusCreated
	if res.Idempotent {
		code = http.StatusOK
	}
	writeJSON(w, code, res)
}
