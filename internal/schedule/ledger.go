package schedule

import (
	"sort"
	"time"
)

// CancelTarget says which kind of session a cancellation removes.
type CancelTarget string

const (
	// CancelRegular skips a canonical date during generation, extending the course.
	CancelRegular CancelTarget = "regular"

	// CancelExtra removes one extra session without extending the course.
	CancelExtra CancelTarget = "extra"
)

// Cancellation removes one occurrence.
//
// For CancelRegular, Date is the canonical (pre-shift) ISO date that the
// generator skips. For CancelExtra, ExtraSeq names the extra entry removed.
type Cancellation struct {
	Date      string
	Target    CancelTarget
	ExtraSeq  int64
	Seq       int64
	AppliedAt time.Time
}

// ShiftOverride moves session FromIndex and every later regular session by DeltaDays.
type ShiftOverride struct {
	FromIndex int
	DeltaDays int
	Seq       int64
	AppliedAt time.Time
}

// ExtraSession is a manually added session outside the weekly cadence.
type ExtraSession struct {
	At        time.Time
	Note      string
	Seq       int64
	AppliedAt time.Time
}

// Ledger is the append-only set of overrides replayed on top of the canonical sequence.
// Seq values come from a single per-class counter shared by all entry kinds.
type Ledger struct {
	Cancellations []Cancellation
	Shifts        []ShiftOverride
	Extras        []ExtraSession
}

// Len returns the total number of entries.
func (l Ledger) Len() int {
	return len(l.Cancellations) + len(l.Shifts) + len(l.Extras)
}

// SkipDates returns the canonical dates excluded from generation.
func (l Ledger) SkipDates() map[string]bool {
	skip := make(map[string]bool, len(l.Cancellations))
	for _, c := range l.Cancellations {
		if c.Target == CancelRegular {
			skip[c.Date] = true
		}
	}
	return skip
}

// OrderedShifts returns the shifts in ascending FromIndex order, ties broken by Seq.
func (l Ledger) OrderedShifts() []ShiftOverride {
	shifts := make([]ShiftOverride, len(l.Shifts))
	copy(shifts, l.Shifts)
	sort.SliceStable(shifts, func(i, j int) bool {
		if shifts[i].FromIndex != shifts[j].FromIndex {
			return shifts[i].FromIndex < shifts[j].FromIndex
		}
		return shifts[i].Seq < shifts[j].Seq
	})
	return shifts
}

// ActiveExtras returns the extras that have not been cancelled, ordered by date then Seq.
func (l Ledger) ActiveExtras() []ExtraSession {
	cancelled := make(map[int64]bool)
	for _, c := range l.Cancellations {
		if c.Target == CancelExtra {
			cancelled[c.ExtraSeq] = true
		}
	}

	extras := make([]ExtraSession, 0, len(l.Extras))
	for _, e := range l.Extras {
		if !cancelled[e.Seq] {
			extras = append(extras, e)
		}
	}
	sort.SliceStable(extras, func(i, j int) bool {
		if !extras[i].At.Equal(extras[j].At) {
			return extras[i].At.Before(extras[j].At)
		}
		return extras[i].Seq < extras[j].Seq
	})
	return extras
}
