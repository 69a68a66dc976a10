// Package store provides SQLite-backed durable storage for the proxy call journal.
//
// The journal is append-only. Each row records one operation performed on an
// object handle: the bus coordinates, the operation and member, the wire
// signature and JSON-encoded payload, and the transport error if any.
//
// # Ordering
//
//   - Entries are stamped with seq INTEGER from a logical clock, never
//     timestamps. The clock resumes from MAX(seq) when a journal is reopened.
//   - All queries order by seq ASC, id ASC COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
