package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keraflour/storefront/internal/checkout"
	"github.com/keraflour/storefront/internal/domain"
)

// StripeCheckout is the card checkout: same validation and order snapshot
// as COD, then a processor session whose URL the client redirects to.
func (h *Handler) StripeCheckout(w http.ResponseWriter, r *http.Request) {
	req, slot, ok := h.decodeCheckout(w, r)
	if !ok {
		return
	}

	result, err := h.orchestrator.Submit(r.Context(), userID(r), checkout.Request{
		AddOn:         req.buildSelection(),
		Slot:          slot,
		PaymentMethod: domain.PaymentStripe,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StripeCheckoutResponse{
		URL:     result.RedirectURL,
		OrderID: result.Order.ID,
	})
}

// StripeSession is polled by the payment-success page. Returning the
// session status is read-only from the caller's point of view, but the
// first poll that sees "paid" also marks the order paid and clears the
// cart, exactly once, no matter how often the page re-polls.
func (h *Handler) StripeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id_required", "")
		return
	}

	sess, err := h.confirmer.Confirm(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StripeSessionResponse{
		ID:            sess.ID,
		PaymentStatus: sess.PaymentStatus,
		AmountTotal:   sess.AmountTotal,
	})
}
