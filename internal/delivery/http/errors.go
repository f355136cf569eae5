package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopcore/storefront/internal/entity"
)

// writeJSONError writes the canonical error envelope: a machine-readable
// kind, a human-readable message and optional details.
func writeJSONError(w http.ResponseWriter, status int, kind, message string, details map[string]any) {
	payload := map[string]any{
		"error":   kind,
		"message": message,
	}
	for k, v := range details {
		payload[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *entity.ValidationError
	var stockErr *entity.InsufficientStockError
	var transitionErr *entity.InvalidTransitionError

	switch {
	case errors.As(err, &validationErr):
		writeJSONError(w, http.StatusBadRequest, "validation_error", validationErr.Error(), map[string]any{
			"field": validationErr.Field,
		})
	case errors.As(err, &stockErr):
		writeJSONError(w, http.StatusConflict, "insufficient_stock", stockErr.Error(), map[string]any{
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.As(err, &transitionErr):
		writeJSONError(w, http.StatusBadRequest, "invalid_transition", transitionErr.Error(), map[string]any{
			"from": transitionErr.From,
			"to":   transitionErr.To,
		})
	case errors.Is(err, entity.ErrEmptyCart):
		writeJSONError(w, http.StatusBadRequest, "empty_cart", "cannot create an order from an empty cart", nil)
	case errors.Is(err, entity.ErrProductInactive):
		writeJSONError(w, http.StatusBadRequest, "product_inactive", "product is no longer available", nil)
	case errors.Is(err, entity.ErrProductNotFound):
		writeJSONError(w, http.StatusNotFound, "product_not_found", "product not found", nil)
	case errors.Is(err, entity.ErrCartLineNotFound):
		writeJSONError(w, http.StatusNotFound, "cart_line_not_found", "item is not in the cart", nil)
	case errors.Is(err, entity.ErrOrderNotFound):
		writeJSONError(w, http.StatusNotFound, "order_not_found", "order not found", nil)
	default:
		slog.Error("Internal error", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}
