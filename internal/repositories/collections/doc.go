// Package collections provides the byte-level key/value persistence that
// backs the engine's typed store.
//
// # Overview
//
// Each collection ("credentials", "conversation.threads", ...) is one row
// keyed by its name; the value is an opaque blob (JSON written by the store
// package). Writes fully replace prior content.
//
// Implementations
//
//   - SQLRepository over SQLite (NewSQLiteRepository), the default local store
//   - SQLRepository over Postgres (NewPostgresRepository), for a shared store
//   - MemoryRepository, for tests and the "memory" driver
//
// Multi-key changes (Apply, Replace) are transactional: either every change
// lands or none does.
package collections
