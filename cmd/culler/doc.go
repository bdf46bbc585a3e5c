// Command culler serves a photo directory to a culling client.
//
// Each GET /{index} returns the image at that catalog position, fitted to
// the client's viewport and capped at MAX_WIDTH x MAX_HEIGHT. Serving an
// index schedules the next PREFETCH_WINDOW images into a small result
// cache so that stepping forward is served from memory.
//
// Configuration is read from the environment (and an optional .env file):
//
//	SOURCE_DIR        Directory opened at startup (optional)
//	DATABASE_DIR      Directory for culler.db and its lock (default /database)
//	PORT              HTTP port (default 8080)
//	METRICS_PORT      Prometheus port (default 9090)
//	METRICS_ENABLED   Serve /metrics on METRICS_PORT (default true)
//	RESIZE_BACKEND    native or vips (default native)
//	RESIZE_FILTER     Resampling filter (default lanczos3)
//	CACHE_CAPACITY    Result cache entries (default 5)
//	PREFETCH_WINDOW   Images read ahead after each delivery (default 5)
//	AUTH_ENABLED      Require a password session (default false)
//	MEMORY_LIMIT      Container memory limit used to derive GOMEMLIMIT
package main
