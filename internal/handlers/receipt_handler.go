package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/proofpost-systems/proofpost/internal/httputil"
	"github.com/proofpost-systems/proofpost/internal/models"
	"github.com/proofpost-systems/proofpost/internal/receipt"
	"github.com/proofpost-systems/proofpost/internal/repository"
)

// ReceiptHandler serves receipt retrieval and verification.
type ReceiptHandler struct {
	engine *receipt.Engine
	repo   repository.Repository
}

func NewReceiptHandler(engine *receipt.Engine, repo repository.Repository) *ReceiptHandler {
	return &ReceiptHandler{engine: engine, repo: repo}
}

// Get handles GET /api/v1/receipts/{id}.
func (h *ReceiptHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.repo.GetReceipt(r.Context(), r.PathValue("id"))
	if err != nil {
		writeReceiptError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// Verify handles POST /api/v1/receipts/{id}/verify. An empty body verifies
// the stored receipt; a receipt in the body is verified as supplied, which
// lets holders check an exported receipt offline against this instance.
func (h *ReceiptHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var supplied *models.Receipt
	if r.ContentLength > 0 {
		var rec models.Receipt
		if err := httputil.DecodeJSON(r, &rec); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		supplied = &rec
	}

	result, err := h.engine.Verify(r.Context(), r.PathValue("id"), supplied)
	if err != nil {
		writeReceiptError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func writeReceiptError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrReceiptNotFound) {
		httputil.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	slog.Error("receipt request failed", slog.String("error", err.Error()))
	httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
}
