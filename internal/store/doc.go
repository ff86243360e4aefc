// Package store provides a SQLite-backed descriptor registry and relation log.
//
// The store keeps:
//   - Descriptors: canonical JSON blobs keyed by content hash
//   - Definitions: name → descriptor hash, re-pointed when a name is redefined
//   - Checks: an append-only log of Extends outcomes
//
// # Conventions
//
// Content addressing
//   - Descriptor, bindings and definitions identities come from
//     internal/ir/hash.go (RFC 8785 canonical JSON, SHA-256 with domain
//     separation)
//   - Writing the same descriptor twice is a no-op
//
// Check idempotency
//   - UNIQUE(left_hash, right_hash, defs_hash): the same question asked
//     against the same definitions is logged once
//
// Logical time
//   - All ordering uses seq INTEGER from a logical clock, never timestamps
//   - All list queries end with ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
