package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RequestsCreated      prometheus.Counter
	RequestsGranted      prometheus.Counter
	RequestsRevoked      prometheus.Counter
	DocumentsRegistered  prometheus.Counter
	HydrationCacheHits   prometheus.Counter
	HydrationCacheMisses prometheus.Counter
	EndpointLatency      *prometheus.HistogramVec

	// Ledger metrics
	LedgerSubmissions    *prometheus.CounterVec
	ConfirmationTimeouts prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentvault_requests_created_total",
			Help: "Total number of consent requests created",
		}),
		RequestsGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentvault_requests_granted_total",
			Help: "Total number of consent requests moved to granted",
		}),
		RequestsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentvault_requests_revoked_total",
			Help: "Total number of consent requests moved to revoked",
		}),
		DocumentsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentvault_documents_registered_total",
			Help: "Total number of document references registered",
		}),
		HydrationCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentvault_hydration_cache_hits_total",
			Help: "Document hydration cache hits",
		}),
		HydrationCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentvault_hydration_cache_misses_total",
			Help: "Document hydration cache misses",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "consentvault_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		LedgerSubmissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consentvault_ledger_submissions_total",
			Help: "Ledger transactions submitted, labeled by backend mode and operation",
		}, []string{"mode", "operation"}),
		ConfirmationTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consentvault_ledger_confirmation_timeouts_total",
			Help: "Confirmation waits that exhausted their round budget",
		}),
	}
}
