// Package metrics registers the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	EntriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "steady_entries_total",
		Help: "Total number of ledger entries appended",
	}, []string{"kind"})
	UndosTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "steady_undos_total",
		Help: "Total number of entries removed by undo",
	})
	WriteRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "steady_write_retries_total",
		Help: "Total number of retried storage mutations after transient contention",
	})
	AuditDropsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "steady_audit_drops_total",
		Help: "Total number of audit events dropped after a storage failure",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		EntriesTotal,
		UndosTotal,
		WriteRetriesTotal,
		AuditDropsTotal,
	)
}

// EntryKind labels steady_entries_total by the sign of the delta.
func EntryKind(delta int) string {
	switch {
	case delta > 0:
		return "deposit"
	case delta < 0:
		return "withdrawal"
	default:
		return "zero"
	}
}
