package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// StopTransitions counts stop status transitions by target status and outcome
	StopTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stop_transitions_total", Help: "Stop status transitions by target status and outcome."},
		[]string{"to_status", "outcome"},
	)
	// CustomerMerges counts merge runs by mode (dry_run/commit)
	CustomerMerges = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "customer_merges_total", Help: "Customer merge runs by mode."},
		[]string{"mode"},
	)
	// ImportedRows counts spreadsheet rows ingested by outcome
	ImportedRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "imported_rows_total", Help: "Spreadsheet rows ingested by outcome."},
		[]string{"outcome"},
	)
)

// RegisterDefault registers all collectors on Registry, once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(StopTransitions)
		Registry.MustRegister(CustomerMerges)
		Registry.MustRegister(ImportedRows)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
