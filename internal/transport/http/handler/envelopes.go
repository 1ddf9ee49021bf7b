package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/restock-api/internal/domain"
)

// StatusEnvelope is the response wrapper the storefront widget and the
// platform webhooks expect.
type StatusEnvelope struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message,omitempty"`
	Notified int    `json:"notified,omitempty"`
	Error    string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, StatusEnvelope{OK: false, Error: msg})
}

// httpError maps domain sentinel errors onto HTTP status codes. Store-side
// failures come back retryable (5xx); caller mistakes come back 4xx.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrStaleCredential):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrPersistence):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
