package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// dashboard-api metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dash_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"route", "method", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dash_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	ActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dash_active_requests",
		Help: "Current in-flight requests",
	})

	CacheHitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dash_cache_total",
		Help: "Result cache lookups",
	}, []string{"outcome"})

	// dashboard-sync metrics
	SyncTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dash_sync_total",
		Help: "Sync cycle count",
	}, []string{"table", "status"})

	SyncDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dash_sync_duration_seconds",
		Help:    "Sync cycle end-to-end duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"table"})

	SyncRecordsTotal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dash_sync_records",
		Help: "Records replicated in the last sync",
	}, []string{"table"})

	SyncRecordsAdded = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dash_sync_records_added",
		Help: "New records detected in the last sync",
	}, []string{"table"})

	// dispatch metrics
	DispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dash_dispatch_total",
		Help: "Terminal dispatch outcomes",
	}, []string{"result"})

	DispatchRetryTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dash_dispatch_retry_total",
		Help: "Dispatch retry count",
	}, []string{"class"})

	DispatchSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dash_dispatch_skipped_total",
		Help: "Dispatches skipped before sending",
	}, []string{"reason"})

	DispatchQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dash_dispatch_queue_depth",
		Help: "Jobs waiting in the dispatch queue",
	})

	DispatchDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dash_dispatch_dropped_total",
		Help: "Jobs dropped because the dispatch queue was full",
	})

	BreakerTripTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dash_breaker_trip_total",
		Help: "Subscriptions deactivated by the circuit breaker",
	})
)

func RegisterAll(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, ActiveRequests, CacheHitTotal,
		SyncTotal, SyncDuration, SyncRecordsTotal, SyncRecordsAdded,
		DispatchTotal, DispatchRetryTotal, DispatchSkippedTotal,
		DispatchQueueDepth, DispatchDroppedTotal, BreakerTripTotal,
	)
}
