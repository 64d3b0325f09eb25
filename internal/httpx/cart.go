package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/keraflour/storefront/internal/auth"
	"github.com/keraflour/storefront/internal/httpx/middlewares"
)

// tokenPayload pulls the verified token payload from the request context.
// The auth middleware guarantees presence on the routes that reach here;
// the zero payload keeps the unauthenticated error paths well-defined.
func tokenPayload(r *http.Request) *auth.Payload {
	payload, ok := middlewares.PayloadFromContext(r.Context())
	if !ok {
		return &auth.Payload{}
	}
	return payload
}

func userID(r *http.Request) string {
	return tokenPayload(r).UserID
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(c))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	c, err := h.carts.Add(r.Context(), userID(r), req.ProductID, decimal.NewFromFloat(req.QuantityKg))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(c))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Remove(r.Context(), userID(r), chi.URLParam(r, "productId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(c))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), userID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
