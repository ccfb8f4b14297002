package schedule

import (
	"sort"
	"time"
)

// Session is one materialized occurrence. Sessions are derived on every read
// and never persisted.
type Session struct {
	// Index is the 1-based address of the session. Regular sessions occupy
	// 1..TargetSessionCount and keep their index across mutations. Extras
	// are numbered after them in date order, so adding or cancelling an
	// extra can renumber the other extras; address extras by date.
	Index int

	// Date is the final date and time after all overrides.
	Date time.Time

	// CanonicalDate is the generated date before shifts. Equal to Date for extras.
	CanonicalDate time.Time

	// IsLocked is true when Date is earlier than the "now" passed to the materializer.
	IsLocked bool

	// IsExtra marks a manually added session.
	IsExtra bool

	// Note is the free text attached to an extra session.
	Note string

	// LedgerSeq is the ledger seq of the extra entry that created the session, or 0.
	LedgerSeq int64
}

// GenerateClassSessions materializes the final session list for a class:
// canonical generation with cancelled dates skipped, cumulative shift
// offsets, extra sessions, and lock flags relative to now. The result is
// sorted by date (ties by index).
//
// It only fails with the INVALID_SCHEDULE error surfaced by Generate.
func GenerateClassSessions(cfg Config, ledger Ledger, now time.Time) ([]Session, error) {
	occ, err := Generate(cfg, ledger.SkipDates())
	if err != nil {
		return nil, err
	}

	// offsets[i] is the total day shift of regular session i+1.
	offsets := make([]int, len(occ))
	for _, sh := range ledger.OrderedShifts() {
		if sh.FromIndex < 1 || sh.FromIndex > len(occ) {
			continue
		}
		for i := sh.FromIndex - 1; i < len(occ); i++ {
			offsets[i] += sh.DeltaDays
		}
	}

	extras := ledger.ActiveExtras()
	sessions := make([]Session, 0, len(occ)+len(extras))
	for i, o := range occ {
		sessions = append(sessions, Session{
			Index:         o.Index,
			Date:          o.Date.AddDate(0, 0, offsets[i]),
			CanonicalDate: o.Date,
		})
	}

	loc := cfg.Loc()
	for k, e := range extras {
		at := e.At.In(loc)
		sessions = append(sessions, Session{
			Index:         len(occ) + k + 1,
			Date:          at,
			CanonicalDate: at,
			IsExtra:       true,
			Note:          e.Note,
			LedgerSeq:     e.Seq,
		})
	}

	for i := range sessions {
		sessions[i].IsLocked = sessions[i].Date.Before(now)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].Date.Before(sessions[j].Date)
		}
		return sessions[i].Index < sessions[j].Index
	})

	return sessions, nil
}

// FindByIndex returns the session with the given index.
func FindByIndex(sessions []Session, index int) (Session, bool) {
	for _, s := range sessions {
		if s.Index == index {
			return s, true
		}
	}
	return Session{}, false
}

// OnDate returns the sessions whose date falls on the ISO date key, in order.
func OnDate(sessions []Session, key string) []Session {
	var out []Session
	for _, s := range sessions {
		if DateKey(s.Date) == key {
			out = append(out, s)
		}
	}
	return out
}

// Regular returns the non-extra sessions ordered by index.
func Regular(sessions []Session) []Session {
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if !s.IsExtra {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// CheckOrder returns an INVALID_SHIFT error naming the first non-locked
// regular session that falls before an earlier-indexed non-locked session.
func CheckOrder(sessions []Session) *Error {
	var prev Session
	seen := false
	for _, s := range Regular(sessions) {
		if s.IsLocked {
			continue
		}
		if seen && s.Date.Before(prev.Date) {
			e := NewInvalidShiftError(s.Index,
				"session %d on %s before session %d on %s",
				s.Index, DateKey(s.Date), prev.Index, DateKey(prev.Date))
			e.Date = DateKey(s.Date)
			return e
		}
		prev, seen = s, true
	}
	return nil
}

// EndDate returns the date of the last regular session.
func EndDate(sessions []Session) (time.Time, bool) {
	regular := Regular(sessions)
	if len(regular) == 0 {
		return time.Time{}, false
	}
	return regular[len(regular)-1].Date, true
}

// Window returns the sessions with from <= Date < to. Windowing is a consumer
// concern; the full sequence is always materialized first.
func Window(sessions []Session, from, to time.Time) []Session {
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if !s.Date.Before(from) && s.Date.Before(to) {
			out = append(out, s)
		}
	}
	return out
}

// MonthWindow returns the calendar-view window for a month: the first of the
// month minus 7 days up to the first of the next month plus 7 days.
func MonthWindow(year int, month time.Month, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return first.AddDate(0, 0, -7), first.AddDate(0, 1, 7)
}
