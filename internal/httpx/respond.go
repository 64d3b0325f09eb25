package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/keraflour/storefront/internal/auth"
	"github.com/keraflour/storefront/internal/cart"
	"github.com/keraflour/storefront/internal/pricing"
	"github.com/keraflour/storefront/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

// writeServiceError maps the error taxonomy onto HTTP statuses: validation
// failures are 422 and never reached any side effect, auth failures are
// 401, unknown resources 404, and anything else is a retryable 5xx.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrEmptyCart),
		errors.Is(err, pricing.ErrMinimumCardAmount),
		errors.Is(err, pricing.ErrIncompleteAddress),
		errors.Is(err, pricing.ErrSlotRequired),
		errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())

	case errors.Is(err, cart.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		writeError(w, http.StatusUnauthorized, "unauthenticated", err.Error())

	case errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", err.Error())

	default:
		writeError(w, http.StatusBadGateway, "service_error", err.Error())
	}
}
