package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_culler_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_culler_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Delivery metrics
var (
	DeliveryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_delivery_requests_total",
			Help: "Total number of image delivery requests by outcome and source",
		},
		[]string{"outcome", "source"},
	)

	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_culler_delivery_duration_seconds",
			Help:    "Time to produce an image response, by source",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"source"},
	)
)

// Resize metrics
var (
	ResizeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_culler_resize_duration_seconds",
			Help:    "Decode and resize duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend", "path"},
	)

	ResizeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_resize_errors_total",
			Help: "Total number of resize failures by backend and kind",
		},
		[]string{"backend", "kind"},
	)

	SourceBytesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_culler_source_bytes_read_total",
			Help: "Total bytes read from source images",
		},
	)
)

// Result cache metrics
var (
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_culler_cache_hits_total",
			Help: "Total number of result cache hits (entries consumed)",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_culler_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_culler_cache_evictions_total",
			Help: "Total number of entries evicted by capacity pressure",
		},
	)

	CacheInserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_culler_cache_inserts_total",
			Help: "Total number of entries inserted into the result cache",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_culler_cache_entries",
			Help: "Number of entries currently held by the result cache",
		},
	)

	CacheBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_culler_cache_bytes",
			Help: "Total pixel bytes currently held by the result cache",
		},
	)
)

// Prefetch metrics
var (
	PrefetchJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_prefetch_jobs_total",
			Help: "Total number of prefetch jobs by outcome",
		},
		[]string{"outcome"},
	)

	PrefetchQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_culler_prefetch_queue_depth",
			Help: "Number of prefetch jobs waiting for a worker",
		},
	)

	PrefetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_culler_prefetch_duration_seconds",
			Help:    "Time to read and resize one prefetched image",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	PrefetchWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_culler_prefetch_workers",
			Help: "Number of prefetch workers",
		},
	)
)

// Catalog metrics
var (
	CatalogItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photo_culler_catalog_items",
			Help: "Number of catalog items by review status",
		},
		[]string{"status"},
	)

	CatalogLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_catalog_loads_total",
			Help: "Total number of directory loads",
		},
		[]string{"status"},
	)

	CatalogLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_culler_catalog_load_duration_seconds",
			Help:    "Directory enumeration duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	CatalogVotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_catalog_votes_total",
			Help: "Total number of votes cast by status",
		},
		[]string{"status"},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_culler_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_culler_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration by volume and operation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_filesystem_operation_errors_total",
			Help: "Filesystem operation errors by volume and operation",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_filesystem_retry_attempts_total",
			Help: "Retries issued after stale NFS file handles",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_filesystem_retry_failures_total",
			Help: "Operations that still failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_culler_filesystem_retry_duration_seconds",
			Help:    "Total time spent in a retried operation, including backoff",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "volume"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_culler_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryThrottled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_culler_memory_throttled",
			Help: "Whether speculative work is throttled by memory pressure (1 = throttled)",
		},
	)
)

// Authentication metrics
var (
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_culler_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photo_culler_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
