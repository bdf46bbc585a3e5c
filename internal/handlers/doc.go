// Package handlers provides the HTTP surface of the culling server.
//
// It includes handlers for:
//   - Image delivery by catalog index (GET /{index})
//   - Catalog loading, listing, voting and export
//   - Viewport reporting and server status
//   - Password authentication and sessions
//   - Health checks and version information
package handlers
