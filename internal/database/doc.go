// Package database persists culling votes and the single user account in
// SQLite.
//
// The database file lives in DATABASE_DIR (culler.db) and is opened in WAL
// mode so the request path can read while a vote is being written. Three
// tables exist:
//
//   - votes: one row per (source_dir, name) holding the latest decision
//   - users: the single password-protected account
//   - sessions: login sessions, tokens stored as SHA-256 hashes
//
// Every exported operation records a duration and success/error count in
// the photo_culler_db_query_* metrics.
package database
