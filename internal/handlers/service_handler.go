package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/proofpost-systems/proofpost/internal/httputil"
	"github.com/proofpost-systems/proofpost/internal/models"
	"github.com/proofpost-systems/proofpost/internal/repository"
	"github.com/proofpost-systems/proofpost/internal/service"
)

// ServiceHandler serves the legal service-of-process endpoints.
type ServiceHandler struct {
	process *service.ProcessService
}

func NewServiceHandler(process *service.ProcessService) *ServiceHandler {
	return &ServiceHandler{process: process}
}

// Initiate handles POST /api/v1/service.
func (h *ServiceHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req models.InitiateServiceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.process.Initiate(r.Context(), &req, actor(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

// Get handles GET /api/v1/service/{id}.
func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.process.GetCase(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// RecordAttempt handles POST /api/v1/service/{id}/attempts.
func (h *ServiceHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	var attempt models.ServiceAttempt
	if err := httputil.DecodeJSON(r, &attempt); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.process.RecordAttempt(r.Context(), r.PathValue("id"), attempt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// FileAffidavit handles POST /api/v1/service/{id}/affidavit.
func (h *ServiceHandler) FileAffidavit(w http.ResponseWriter, r *http.Request) {
	var req models.AffidavitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	aff, err := h.process.RecordAffidavit(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, aff)
}

// GetAffidavit handles GET /api/v1/service/{id}/affidavit.
func (h *ServiceHandler) GetAffidavit(w http.ResponseWriter, r *http.Request) {
	aff, err := h.process.GetAffidavit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, aff)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrServiceCaseNotFound),
		errors.Is(err, repository.ErrAffidavitNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidServiceType):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMaxAttempts),
		errors.Is(err, service.ErrCaseFiled):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("service request failed", slog.String("error", err.Error()))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
