package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keraflour/storefront/internal/checkout"
	"github.com/keraflour/storefront/internal/domain"
)

// CreateOrder is the cash-on-delivery checkout: validate, snapshot, place.
// The card flow goes through StripeCheckout instead.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	req, slot, ok := h.decodeCheckout(w, r)
	if !ok {
		return
	}

	result, err := h.orchestrator.Submit(r.Context(), userID(r), checkout.Request{
		AddOn:         req.buildSelection(),
		Slot:          slot,
		PaymentMethod: domain.PaymentCOD,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(result.Order))
}

func (h *Handler) decodeCheckout(w http.ResponseWriter, r *http.Request) (*CheckoutRequest, domain.Slot, bool) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return nil, domain.Slot{}, false
	}
	slot, err := req.parseSlot()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
		return nil, domain.Slot{}, false
	}
	return &req, slot, true
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrdersByUser(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrders(orders))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Customers may read only their own orders; admins may read any.
	payload := tokenPayload(r)
	if order.UserID != payload.UserID && payload.Role != domain.RoleAdmin {
		writeError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAllOrders(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrders(orders))
}

// UpdateOrderStatus is the admin order-management operation: the only
// mutation an order sees after creation besides payment confirmation.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	next := domain.OrderStatus(req.Status)

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !domain.ValidStatusTransition(order.Status, next) {
		writeError(w, http.StatusUnprocessableEntity, "invalid_transition",
			"cannot move order from "+string(order.Status)+" to "+string(next))
		return
	}

	if err := h.orders.UpdateOrderStatus(r.Context(), id, next); err != nil {
		writeServiceError(w, err)
		return
	}

	if h.events != nil {
		ev := domain.NewOrderEvent(r.Context(), id, next, "status updated by admin")
		if err := h.events.AppendOrderEvent(r.Context(), ev); err != nil {
			slog.ErrorContext(r.Context(), "failed to append order event", "order_id", id, "error", err)
		}
	}

	order.Status = next
	writeJSON(w, http.StatusOK, mapOrder(order))
}
