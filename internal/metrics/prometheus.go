package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion service

var (
	// Provider metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtside_api_calls_total",
			Help: "Total number of sports data provider calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courtside_api_call_duration_seconds",
			Help:    "Duration of provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Database metrics
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtside_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtside_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtside_cache_hits_total",
			Help: "Total number of logo cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtside_cache_misses_total",
			Help: "Total number of logo cache misses",
		},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtside_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courtside_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"type"},
	)

	EntitiesUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtside_entities_upserted_total",
			Help: "Total number of entities written by sync operations",
		},
		[]string{"entity"},
	)

	// Advice metrics
	AdviceGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtside_advice_generated_total",
			Help: "Total number of stored advice records by decision",
		},
		[]string{"order"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtside_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// Worker metrics
	WorkerRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtside_worker_runs_total",
			Help: "Total number of full sync runs",
		},
	)

	WorkerRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "courtside_worker_run_duration_seconds",
			Help:    "Duration of full sync runs in seconds",
			Buckets: []float64{10, 30, 60, 300, 600, 1800, 3600},
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtside_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)

	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtside_system_uptime_seconds",
			Help: "Worker uptime in seconds",
		},
	)
)

// RecordAPICall records a provider call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordSync records a sync operation
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordUpserts adds n written rows for an entity kind
func RecordUpserts(entity string, n int) {
	if n > 0 {
		EntitiesUpserted.WithLabelValues(entity).Add(float64(n))
	}
}

// RecordAdvice records a stored advice record
func RecordAdvice(order string) {
	if order == "" {
		order = "none"
	}
	AdviceGenerated.WithLabelValues(order).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// RecordWorkerRun records a full sync run
func RecordWorkerRun(duration float64) {
	WorkerRuns.Inc()
	WorkerRunDuration.Observe(duration)
}
