package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chinhon/go-storefront/internal/inventory"
	"github.com/chinhon/go-storefront/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to response codes. Anything
// unrecognized is a storage failure; the caller may retry.
func writeError(w http.ResponseWriter, err error) {
	var insufficient *inventory.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     "insufficient stock",
			"item_id":   insufficient.ItemID,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
	case errors.Is(err, inventory.ErrUnknownItem), errors.Is(err, orders.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrInvalidStatus):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrEmptyCart), errors.Is(err, orders.ErrInvalidQty):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failure"})
	}
}
