// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig],
// after an optional .env file in the working directory. Supported variables:
//
//   - SOURCE_DIR: Directory opened at startup (default: none)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - MAX_WIDTH, MAX_HEIGHT: Upper bound for delivered images (default: 1920x1080)
//   - CACHE_CAPACITY: Result cache entries (default: 5)
//   - PREFETCH_WINDOW: Images warmed after each delivery (default: 5)
//   - PREFETCH_WORKERS: Prefetch pool size (default: derived from CPUs)
//   - PREFETCH_QUEUE: Pending prefetch jobs before dropping (default: 64)
//   - RESIZE_BACKEND: native or vips (default: native)
//   - RESIZE_FILTER: lanczos3, catmullrom, bilinear, approxbilinear, nearest
//   - AUTH_ENABLED: Require a password session (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: See package memory
//
// # Instance Lock
//
// [AcquireInstanceLock] takes a file lock next to the database so two
// servers never share one sqlite file.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
