package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/restock-api/internal/application/notify"
	"github.com/restock-api/internal/domain"
)

// NotificationHandler handles signup and restock-webhook endpoints.
type NotificationHandler struct {
	svc notify.Service
}

func NewNotificationHandler(svc notify.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// Signup registers a back-in-stock notification request.
func (h *NotificationHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req notify.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := h.svc.RegisterInterest(r.Context(), req); err != nil {
		// A duplicate is not an error to the widget; it just means the
		// customer already has a pending request.
		if errors.Is(err, domain.ErrDuplicate) {
			writeJSON(w, http.StatusOK, StatusEnvelope{
				OK:      false,
				Message: "You've already requested a notification for this product.",
			})
			return
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusEnvelope{OK: true})
}

// stockUpdatePayload mirrors the platform's inventory-level webhook body.
// inventory_item_id arrives as a JSON number.
type stockUpdatePayload struct {
	InventoryItemID json.Number `json:"inventory_item_id"`
	Available       int         `json:"available"`
}

// StockUpdate fans restock notifications out to every pending subscriber of
// the reported inventory item.
func (h *NotificationHandler) StockUpdate(w http.ResponseWriter, r *http.Request) {
	var update stockUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if update.InventoryItemID.String() == "" {
		writeError(w, http.StatusBadRequest, "inventory_item_id is required")
		return
	}
	if update.Available < 1 {
		writeJSON(w, http.StatusOK, StatusEnvelope{OK: true, Message: "inventory not in stock"})
		return
	}

	notified, err := h.svc.HandleRestock(r.Context(), update.InventoryItemID.String(), update.Available)
	if err != nil && notified == 0 {
		httpError(w, err)
		return
	}
	// Partial fan-out failures still report what was sent; the remaining
	// subscribers stay pending for the next restock event.
	writeJSON(w, http.StatusOK, StatusEnvelope{OK: true, Notified: notified})
}
