package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Auth
	Registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Registration attempts by result.",
		},
		[]string{"role", "result"}, // ok|rejected|conflict|error
	)
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Login attempts by result.",
		},
		[]string{"role", "result"}, // ok|failed|error
	)
	TokenChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_checks_total",
			Help: "Token guard outcomes.",
		},
		[]string{"outcome"}, // attached|missing|bad_prefix|invalid
	)

	// Audit worker queue
	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_queue_depth",
			Help: "Audit events waiting for a worker.",
		},
	)
	AuditDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_dropped_total",
			Help: "Audit events dropped because the queue was full.",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors on the default registry once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestLatency, Registrations, Logins, TokenChecks, AuditQueueDepth, AuditDropped)
	})
}
