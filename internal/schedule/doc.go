// Package schedule turns a class's weekly recurrence pattern into dated sessions.
//
// The package is a pure computation. A class schedule is fully determined by
// its Config and its Ledger; every read recomputes the session list from
// scratch, so calling GenerateClassSessions twice with the same inputs yields
// identical output.
//
// Pipeline:
//  1. Generate walks calendar days from the start date and assigns indices to
//     days whose weekday is in the pattern, skipping cancelled dates. Each
//     cancellation therefore pushes the course end out by one occurrence.
//  2. Shift overrides add day offsets to every session from their index on.
//  3. Extra sessions are merged at their fixed dates after the regular range.
//  4. Sessions earlier than the caller-supplied "now" are marked locked.
//
// Wall-clock time never enters the package implicitly: "now" is always a
// parameter.
package schedule
