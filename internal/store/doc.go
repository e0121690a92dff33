// Package store provides durable key/value backends for playground
// persistence.
//
// Each backend stores opaque JSON documents under string keys such as
// "devstage-button". The engine treats every backend as fire-and-forget:
// failures are logged by the caller and never interrupt in-memory state.
//
// # Backends
//
//   - SQLite: single-file database (WAL mode, embedded schema,
//     user_version migrations). Default for the CLI.
//   - Redis: shared store for multiple processes, keys namespaced.
//   - Memory: process-local map for tests and ephemeral sessions.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
