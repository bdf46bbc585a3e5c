package metrics

// InitializeMetrics pre-populates expected label combinations so every
// series is exported from the first scrape.
func InitializeMetrics() {
	for _, source := range []string{"cache", "produce"} {
		DeliveryDuration.WithLabelValues(source)
		DeliveryRequestsTotal.WithLabelValues("success", source)
	}
	for _, outcome := range []string{"index_out_of_range", "file_read", "decode", "resize"} {
		DeliveryRequestsTotal.WithLabelValues(outcome, "produce")
	}
	DeliveryRequestsTotal.WithLabelValues("invalid_index", "none")

	for _, backend := range []string{"native", "vips"} {
		for _, path := range []string{"passthrough", "scaled"} {
			ResizeDuration.WithLabelValues(backend, path)
		}
		for _, kind := range []string{"decode", "resize"} {
			ResizeErrorsTotal.WithLabelValues(backend, kind)
		}
	}

	for _, outcome := range []string{"produced", "skipped_cached", "skipped_memory", "failed", "dropped"} {
		PrefetchJobsTotal.WithLabelValues(outcome)
	}

	for _, status := range []string{"pending", "keep", "delete"} {
		CatalogItems.WithLabelValues(status)
	}
	for _, status := range []string{"keep", "delete"} {
		CatalogVotesTotal.WithLabelValues(status)
	}
	CatalogLoadsTotal.WithLabelValues("success")
	CatalogLoadsTotal.WithLabelValues("error")

	for _, vol := range []string{"source", "database", "unknown"} {
		for _, op := range []string{"read", "stat", "readdir"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	AuthAttemptsTotal.WithLabelValues("success")
	AuthAttemptsTotal.WithLabelValues("failure")
}
