// Package classes owns the per-class schedule aggregate and its write path.
//
// A class is a recurrence configuration plus an append-only override ledger,
// both persisted by internal/store. Reads rebuild the aggregate and
// materialize sessions from scratch with schedule.GenerateClassSessions.
//
// Writes go through the mutators (UpdateScheduleChain, CancelClassSession,
// AddExtraSession). Each mutator:
//  1. takes the in-process lock for the class
//  2. loads the class and its ledger at a version
//  3. materializes sessions relative to the service clock and validates
//  4. appends one ledger entry conditioned on that version
//
// A version conflict means another writer (usually another process on the
// same database) appended first; the mutator reloads and validates again, so
// a request is never accepted against a stale view.
//
// Expected rejections are reported in Result, not as errors.
package classes
