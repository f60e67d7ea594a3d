package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
	"github.com/go-chi/chi/v5"
)

type MenuRepo interface {
	FetchMenuItem(ctx context.Context, itemID int64) (billing.MenuItem, error)
	Categories(ctx context.Context) ([]string, error)
	AddMenuItem(ctx context.Context, m billing.MenuItem) (int64, error)
	UpdateMenuItem(ctx context.Context, m billing.MenuItem) error
	DeleteMenuItem(ctx context.Context, itemID int64) error
}

type MenuReader interface {
	ListMenu(ctx context.Context, category string) ([]billing.MenuItem, error)
}

type MenuInvalidator interface {
	Invalidate(ctx context.Context) error
}

type MenuHandler struct {
	Repo  MenuRepo
	Menu  MenuReader
	Cache MenuInvalidator
}

type MenuItemReq struct {
	Name     string  `json:"item_name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	GSTRate  float64 `json:"gst_rate"`
	ImageURL string  `json:"image_url"`
}

func (q MenuItemReq) item(id int64) billing.MenuItem {
	return billing.MenuItem{ID: id, Name: q.Name, Category: q.Category, Price: q.Price, GSTRate: q.GSTRate, ImageURL: q.ImageURL}
}

func (h *MenuHandler) Register(r chi.Router) {
	r.Get("/menu", h.list)
	r.Get("/menu/categories", h.categories)
	r.Get("/menu/{id}", h.get)
	r.Post("/menu", h.add)
	r.Put("/menu/{id}", h.update)
	r.Delete("/menu/{id}", h.remove)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *MenuHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Menu.ListMenu(ctx, r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []billing.MenuItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	m, err := h.Repo.FetchMenuItem(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MenuHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.Repo.Categories(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cs == nil {
		cs = []string{}
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *MenuHandler) add(w http.ResponseWriter, r *http.Request) {
	var req MenuItemReq
	if !decodeJSON(w, r, &req) {
		return
	}
	m := req.item(0)
	if err := billing.ValidateMenuItem(m); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.Repo.AddMenuItem(ctx, m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Cache.Invalidate(ctx)
	m.ID = id
	writeJSON(w, http.StatusCreated, m)
}

func (h *MenuHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req MenuItemReq
	if !decodeJSON(w, r, &req) {
		return
	}
	m := req.item(id)
	if err := billing.ValidateMenuItem(m); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.UpdateMenuItem(ctx, m); err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Cache.Invalidate(ctx)
	writeJSON(w, http.StatusOK, m)
}

func (h *MenuHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.DeleteMenuItem(ctx, id); err != nil {
		writeError(w, r, err)
		return
	}
	_ = h.Cache.Invalidate(ctx)
	w.WriteHeader(http.StatusNoContent)
}
