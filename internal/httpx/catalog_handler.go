package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chinhon/go-storefront/internal/catalog"
	"github.com/chinhon/go-storefront/internal/inventory"
)

type CatalogHandler struct {
	Catalog *catalog.Repo
	Items   *inventory.ItemRepo
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/catalog", h.list)
	r.Get("/catalog/categories", h.categories)
}

type catalogResp struct {
	Entries    []catalog.Entry `json:"entries"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q := catalog.Query{
		Search:        r.URL.Query().Get("search"),
		Category:      r.URL.Query().Get("category"),
		PriceMinCents: atoi(r.URL.Query().Get("price_min"), 0),
		PriceMaxCents: atoi(r.URL.Query().Get("price_max"), 0),
		Page:          atoi(r.URL.Query().Get("page"), 1),
		PerPage:       atoi(r.URL.Query().Get("per_page"), 24),
	}

	entries, totalPages, err := h.Catalog.List(ctx, q)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	writeJSON(w, http.StatusOK, catalogResp{Entries: entries, Page: q.Page, TotalPages: totalPages})
}

func (h *CatalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cats, err := h.Items.Categories(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
