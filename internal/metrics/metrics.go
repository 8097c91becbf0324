package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofpost_deliveries_total",
			Help: "Total deliveries created, by method and outcome",
		},
		[]string{"method", "status"},
	)

	BulkRecipientsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofpost_bulk_recipients_total",
			Help: "Bulk-send recipients processed, by outcome",
		},
		[]string{"status"},
	)

	ReceiptsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofpost_receipts_issued_total",
			Help: "Receipts issued, by method and anchoring outcome",
		},
		[]string{"method", "anchored"},
	)

	ReceiptVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofpost_receipt_verifications_total",
			Help: "Receipt verification outcomes",
		},
		[]string{"result"},
	)

	ReceiptIssueDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proofpost_receipt_issue_duration_seconds",
			Help:    "Duration of receipt issuance including anchor fetch",
			Buckets: prometheus.DefBuckets,
		},
	)

	AnchorMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proofpost_anchor_misses_total",
			Help: "Receipt issuances that proceeded without a temporal anchor",
		},
	)

	ServiceCasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofpost_service_cases_total",
			Help: "Service-of-process cases initiated, by type",
		},
		[]string{"type"},
	)

	AffidavitsFiled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proofpost_affidavits_filed_total",
			Help: "Affidavits filed",
		},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofpost_ratelimit_hits_total",
			Help: "Requests rejected by the per-sender rate limiter",
		},
		[]string{"key"},
	)
)
