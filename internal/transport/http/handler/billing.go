package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/restock-api/internal/application/billing"
)

// BillingHandler handles billing-charge webhooks and charge listings.
type BillingHandler struct {
	svc billing.Service
}

func NewBillingHandler(svc billing.Service) *BillingHandler {
	return &BillingHandler{svc: svc}
}

func (h *BillingHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req billing.ChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	charge, err := h.svc.Record(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, charge)
}

func (h *BillingHandler) ListByShop(w http.ResponseWriter, r *http.Request) {
	charges, err := h.svc.ListByShop(r.Context(), chi.URLParam(r, "shop"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charges)
}
