// Package logging provides the leveled logger used across the photo culler.
//
// Levels, from most to least verbose:
//   - DEBUG: per-request and per-prefetch detail
//   - INFO: startup, catalog loads, shutdown
//   - WARN: recoverable problems (failed prefetch, vote persistence)
//   - ERROR: failures that need operator attention
//   - FATAL: logged, then the process exits
//
// The level comes from DEBUG=true or LOG_LEVEL (debug, info, warn, error).
package logging
