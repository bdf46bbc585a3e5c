// Package middleware provides HTTP middleware for the culling server.
//
// It includes:
//   - Request logging in W3C Extended Log Format, with the cache outcome
//   - Prometheus request metrics with bounded path cardinality
//   - gzip compression for JSON and text responses (pixel bodies pass through)
package middleware
