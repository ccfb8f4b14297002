// Package harness runs YAML schedule scenarios against a fresh store.
//
// A scenario creates one class, applies a list of mutator steps against a
// fixed clock, checks each step's expected outcome, and then evaluates
// assertions over the materialized sessions and the ledger.
//
// Scenario format:
//
//	name: cancel_extends_tail
//	now: "2023-12-01T00:00:00Z"
//	class:
//	  name: Evening English
//	  pattern: "T2 / T4 / T6 • 18:30"
//	  start: "2024-01-01"
//	  sessions: 6
//	steps:
//	  - cancel: "2024-01-05"
//	  - shift: {index: 3, to: "2024-01-10T18:30"}
//	    expect: INVALID_SHIFT
//	  - extra: {at: "2024-01-06T10:00", note: makeup}
//	  - set_now: "2024-01-04T00:00:00Z"
//	assertions:
//	  - type: session_dates
//	    dates: ["2024-01-01", ...]
//
// Every run uses an in-memory database, a fixed clock and sequential class
// IDs, so a scenario always produces byte-identical golden output.
package harness
