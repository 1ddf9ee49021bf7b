package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/restock-api/internal/application/credential"
	"github.com/restock-api/internal/domain"
	"github.com/restock-api/internal/pkg/validate"
)

// StoreWriter is the durable side of credential install/uninstall webhooks.
type StoreWriter interface {
	Put(ctx context.Context, s *domain.StoreCredential) error
	MarkUninstalled(ctx context.Context, shop, app string) error
}

// StoreHandler handles app install/uninstall webhooks. The cache is refreshed
// only after the durable write succeeds, keeping it write-through.
type StoreHandler struct {
	repo  StoreWriter
	cache *credential.Cache
}

func NewStoreHandler(repo StoreWriter, cache *credential.Cache) *StoreHandler {
	return &StoreHandler{repo: repo, cache: cache}
}

type installPayload struct {
	Shop        string `json:"shop" validate:"required"`
	App         string `json:"app" validate:"required"`
	AccessToken string `json:"access_token" validate:"required"`
}

func (h *StoreHandler) Installed(w http.ResponseWriter, r *http.Request) {
	var req installPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cred := &domain.StoreCredential{
		Shop:        req.Shop,
		App:         req.App,
		AccessToken: req.AccessToken,
	}
	if err := h.repo.Put(r.Context(), cred); err != nil {
		httpError(w, err)
		return
	}
	h.cache.Update(req.Shop, req.App, req.AccessToken)
	writeJSON(w, http.StatusOK, StatusEnvelope{OK: true, Message: "store saved"})
}

type uninstallPayload struct {
	Shop string `json:"shop" validate:"required"`
	App  string `json:"app" validate:"required"`
}

func (h *StoreHandler) Uninstalled(w http.ResponseWriter, r *http.Request) {
	var req uninstallPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.MarkUninstalled(r.Context(), req.Shop, req.App); err != nil {
		httpError(w, err)
		return
	}
	h.cache.Revoke(req.Shop, req.App)
	writeJSON(w, http.StatusOK, StatusEnvelope{OK: true, Message: "store uninstalled"})
}
