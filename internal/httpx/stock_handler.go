package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chinhon/go-storefront/internal/inventory"
)

// StockHandler is the staff inventory administration surface. As with
// status changes, authorization is handled upstream.
type StockHandler struct {
	Items  *inventory.ItemRepo
	Ledger inventory.Ledger
}

func (h *StockHandler) Register(r *chi.Mux) {
	r.Get("/api/stock", h.list)
	r.Post("/api/stock", h.create)
	r.Put("/api/stock/{id}", h.update)
	r.Delete("/api/stock/{id}", h.delete)
	r.Get("/api/stock/{id}/quantity", h.quantity)
}

func (h *StockHandler) quantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	n, err := h.Ledger.GetQuantity(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"quantity": n})
}

func (h *StockHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Items.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []inventory.StockItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *StockHandler) create(w http.ResponseWriter, r *http.Request) {
	var it inventory.StockItem
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if it.DisplayName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "display name is required"})
		return
	}
	if it.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must not be negative"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.Items.Create(ctx, it)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *StockHandler) update(w http.ResponseWriter, r *http.Request) {
	var it inventory.StockItem
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	it.ID = chi.URLParam(r, "id")
	if it.DisplayName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "display name is required"})
		return
	}
	if it.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must not be negative"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Update(ctx, it); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "updated"})
}

func (h *StockHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}
