package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProducts(products))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if h.adminReadOnly {
		writeError(w, http.StatusForbidden, "read_only", "catalog mutations are disabled in this deployment")
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Name == "" || req.PricePerKg <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "name and a positive pricePerKg are required")
		return
	}

	product, err := h.catalog.Create(r.Context(), req.Name, parsePrice(req.PricePerKg), req.Image)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(product))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if h.adminReadOnly {
		writeError(w, http.StatusForbidden, "read_only", "catalog mutations are disabled in this deployment")
		return
	}

	slug := chi.URLParam(r, "slug")
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.PricePerKg < 0 {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "pricePerKg must not be negative")
		return
	}

	product, err := h.catalog.Update(r.Context(), slug, req.Name, parsePrice(req.PricePerKg), req.Image)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(product))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if h.adminReadOnly {
		writeError(w, http.StatusForbidden, "read_only", "catalog mutations are disabled in this deployment")
		return
	}

	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
