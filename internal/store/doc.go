// Package store provides SQLite-backed durable storage for class schedules.
//
// Two tables:
//   - classes: one row per class holding its recurrence configuration and a
//     ledger version counter
//   - ledger_entries: the append-only override ledger (cancellations, chain
//     shifts, extra sessions)
//
// # Critical Patterns
//
// Append-only ledger:
//   - UPDATE and DELETE on ledger_entries are rejected by triggers
//   - entries are corrected by appending, never by editing
//
// Optimistic concurrency:
//   - every append names the class version it was validated against
//   - the append bumps classes.version in the same transaction; a stale
//     version fails with ErrVersionConflict and the caller re-validates
//
// Deterministic reads:
//   - ledger queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//   - seq is a per-class counter equal to the class version after the append
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Entry IDs are content addressed; see internal/canon.
package store
