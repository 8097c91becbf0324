package server

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/proofpost-systems/proofpost/internal/handlers"
	"github.com/proofpost-systems/proofpost/internal/middleware"
)

// RouterConfig holds the dependencies needed to register routes.
type RouterConfig struct {
	DeliveryHandler *handlers.DeliveryHandler
	ReceiptHandler  *handlers.ReceiptHandler
	ServiceHandler  *handlers.ServiceHandler
	AuthMiddleware  *middleware.AuthMiddleware
	Ready           func() error
}

// NewRouter constructs the API ServeMux. All /api/v1 routes pass through
// authentication; health and metrics do not.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	protect := cfg.AuthMiddleware.RequireAuth

	mux.HandleFunc("POST /api/v1/deliveries", protect(cfg.DeliveryHandler.Send))
	mux.HandleFunc("POST /api/v1/deliveries/bulk", protect(cfg.DeliveryHandler.BulkSend))
	mux.HandleFunc("GET /api/v1/deliveries/{id}", protect(cfg.DeliveryHandler.Get))
	mux.HandleFunc("POST /api/v1/deliveries/{id}/confirm", protect(cfg.DeliveryHandler.Confirm))
	mux.HandleFunc("POST /api/v1/deliveries/{id}/open", protect(cfg.DeliveryHandler.Open))
	mux.HandleFunc("POST /api/v1/deliveries/{id}/receipt", protect(cfg.DeliveryHandler.Receipt))

	mux.HandleFunc("GET /api/v1/receipts/{id}", protect(cfg.ReceiptHandler.Get))
	mux.HandleFunc("POST /api/v1/receipts/{id}/verify", protect(cfg.ReceiptHandler.Verify))

	mux.HandleFunc("POST /api/v1/service", protect(cfg.ServiceHandler.Initiate))
	mux.HandleFunc("GET /api/v1/service/{id}", protect(cfg.ServiceHandler.Get))
	mux.HandleFunc("POST /api/v1/service/{id}/attempts", protect(cfg.ServiceHandler.RecordAttempt))
	mux.HandleFunc("POST /api/v1/service/{id}/affidavit", protect(cfg.ServiceHandler.FileAffidavit))
	mux.HandleFunc("GET /api/v1/service/{id}/affidavit", protect(cfg.ServiceHandler.GetAffidavit))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok","service":"proofpost"}`)
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ready"}`)
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
