// Package metrics provides Prometheus instrumentation for the photo culler.
//
// All metrics are prefixed with "photo_culler_" and registered on the default
// registry through promauto, so importing the package is enough to expose them
// on the /metrics endpoint served by promhttp.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// ## Delivery Metrics
//
// One observation per image request:
//   - DeliveryRequestsTotal: by outcome (served, invalid_index, out_of_range,
//     file_read, decode, resize) and source (cache, source)
//   - DeliveryDuration: end-to-end time by source
//
// ## Resize Metrics
//   - ResizeDuration: by backend (native, vips) and path (passthrough, resized)
//   - SourceBytesRead: bytes read from the source directory
//
// ## Cache Metrics
//   - CacheHits, CacheMisses, CacheEvictions, CacheInserts, CacheEntries
//
// ## Prefetch Metrics
//   - PrefetchJobsTotal: by outcome (produced, skipped_cached,
//     skipped_memory, failed, dropped)
//   - PrefetchQueueDepth, PrefetchDuration
//
// ## Catalog Metrics
//   - CatalogItems: by review status
//   - CatalogLoadsTotal, CatalogVotesTotal
//
// ## Filesystem, Memory, Database and Auth Metrics
//
// Filesystem retry metrics are recorded through the filesystem.Observer
// implementation returned by NewFilesystemObserver, which keeps the
// filesystem package free of a metrics import.
package metrics
