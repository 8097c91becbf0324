package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/proofpost-systems/proofpost/internal/dispatch"
	"github.com/proofpost-systems/proofpost/internal/httputil"
	"github.com/proofpost-systems/proofpost/internal/middleware"
	"github.com/proofpost-systems/proofpost/internal/models"
	"github.com/proofpost-systems/proofpost/internal/ratelimit"
	"github.com/proofpost-systems/proofpost/internal/repository"
	"github.com/proofpost-systems/proofpost/internal/service"
)

// DeliveryHandler serves the delivery lifecycle endpoints.
type DeliveryHandler struct {
	deliveries *service.DeliveryService
	limiter    ratelimit.RateLimiter
}

func NewDeliveryHandler(deliveries *service.DeliveryService, limiter ratelimit.RateLimiter) *DeliveryHandler {
	if limiter == nil {
		limiter = &ratelimit.NoOpRateLimiter{}
	}
	return &DeliveryHandler{deliveries: deliveries, limiter: limiter}
}

// Send handles POST /api/v1/deliveries.
func (h *DeliveryHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.SendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.allow(w, r, req.Sender) {
		return
	}

	d, err := h.deliveries.Send(r.Context(), &req, actor(r))
	if err != nil {
		writeDeliveryError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, d)
}

// BulkSend handles POST /api/v1/deliveries/bulk.
func (h *DeliveryHandler) BulkSend(w http.ResponseWriter, r *http.Request) {
	var req models.BulkSendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.allow(w, r, "") {
		return
	}

	batch, err := h.deliveries.BulkSend(r.Context(), &req, actor(r))
	if err != nil {
		writeDeliveryError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, batch)
}

// Get handles GET /api/v1/deliveries/{id}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.deliveries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDeliveryError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

// Confirm handles POST /api/v1/deliveries/{id}/confirm.
func (h *DeliveryHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var conf models.Confirmation
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &conf); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	d, err := h.deliveries.Confirm(r.Context(), r.PathValue("id"), conf, actor(r))
	if err != nil {
		writeDeliveryError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

// Open handles POST /api/v1/deliveries/{id}/open. View metadata comes from
// the request itself when the body does not carry it.
func (h *DeliveryHandler) Open(w http.ResponseWriter, r *http.Request) {
	var view models.ViewData
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &view); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if view.IP == "" {
		view.IP = httputil.GetClientIP(r)
	}
	if view.UserAgent == "" {
		view.UserAgent = r.Header.Get("User-Agent")
	}

	d, err := h.deliveries.Opened(r.Context(), r.PathValue("id"), view, actor(r))
	if err != nil {
		writeDeliveryError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

// Receipt handles POST /api/v1/deliveries/{id}/receipt.
func (h *DeliveryHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	var req models.ReceiptRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.deliveries.Receipt(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeDeliveryError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *DeliveryHandler) allow(w http.ResponseWriter, r *http.Request, sender string) bool {
	key := sender
	if key == "" {
		key = httputil.GetClientIP(r)
	}
	allowed, err := h.limiter.Allow(r.Context(), key)
	if err != nil {
		slog.Warn("rate limiter unavailable, allowing request", slog.String("error", err.Error()))
		return true
	}
	if !allowed {
		httputil.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return false
	}
	return true
}

func actor(r *http.Request) string {
	if caller := middleware.GetCaller(r.Context()); caller != "" {
		return caller
	}
	return "system"
}

func writeDeliveryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrDeliveryNotFound),
		errors.Is(err, repository.ErrReceiptNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, dispatch.ErrUnsupportedMethod):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDeliveryNotReceiptable):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("delivery request failed", slog.String("error", err.Error()))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
