package httpx

import (
	"encoding/json"
	"net/http"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "email and password are required")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, User: mapUser(user)})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context(), tokenPayload(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

// SyncUser provisions a local account after a signup with the external
// identity provider and logs the client straight in.
func (h *Handler) SyncUser(w http.ResponseWriter, r *http.Request) {
	var req SyncUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "token is required")
		return
	}

	token, user, err := h.auth.SyncUser(r.Context(), req.Token, req.Name)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "identity_rejected", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, TokenResponse{Token: token, User: mapUser(user)})
}
