package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var beforeCourse = time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)

func sessionKeys(sessions []Session) []string {
	keys := make([]string, len(sessions))
	for i, s := range sessions {
		keys[i] = DateKey(s.Date)
	}
	return keys
}

func TestGenerateClassSessions_EmptyLedger(t *testing.T) {
	sessions, err := GenerateClassSessions(mwfConfig(t, 6), Ledger{}, beforeCourse)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2024-01-01", "2024-01-03", "2024-01-05",
		"2024-01-08", "2024-01-10", "2024-01-12",
	}, sessionKeys(sessions))
	for _, s := range sessions {
		assert.False(t, s.IsLocked)
		assert.False(t, s.IsExtra)
		assert.Equal(t, s.Date, s.CanonicalDate)
	}
}

func TestGenerateClassSessions_CancellationExtendsTail(t *testing.T) {
	ledger := Ledger{Cancellations: []Cancellation{
		{Date: "2024-01-05", Target: CancelRegular, Seq: 1},
	}}

	sessions, err := GenerateClassSessions(mwfConfig(t, 6), ledger, beforeCourse)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2024-01-01", "2024-01-03", "2024-01-08",
		"2024-01-10", "2024-01-12", "2024-01-15",
	}, sessionKeys(sessions))
	assert.Equal(t, 6, sessions[5].Index)
}

func TestGenerateClassSessions_ChainShift(t *testing.T) {
	ledger := Ledger{Shifts: []ShiftOverride{{FromIndex: 3, DeltaDays: 5, Seq: 1}}}

	sessions, err := GenerateClassSessions(mwfConfig(t, 6), ledger, beforeCourse)
	require.NoError(t, err)

	// Sessions 3..6 each move by five days; spacing after index 3 is preserved.
	assert.Equal(t, []string{
		"2024-01-01", "2024-01-03", "2024-01-10",
		"2024-01-13", "2024-01-15", "2024-01-17",
	}, sessionKeys(sessions))
	assert.Equal(t, "2024-01-05", DateKey(sessions[2].CanonicalDate))
	assert.Equal(t, 18, sessions[2].Date.Hour())
}

func TestGenerateClassSessions_ShiftsAccumulate(t *testing.T) {
	ledger := Ledger{Shifts: []ShiftOverride{
		{FromIndex: 5, DeltaDays: 7, Seq: 2},
		{FromIndex: 3, DeltaDays: 5, Seq: 1},
	}}

	sessions, err := GenerateClassSessions(mwfConfig(t, 6), ledger, beforeCourse)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2024-01-01", "2024-01-03", "2024-01-10",
		"2024-01-13", "2024-01-22", "2024-01-24",
	}, sessionKeys(sessions))
}

func TestGenerateClassSessions_OutOfRangeShiftIgnored(t *testing.T) {
	ledger := Ledger{Shifts: []ShiftOverride{{FromIndex: 9, DeltaDays: 3, Seq: 1}}}

	sessions, err := GenerateClassSessions(mwfConfig(t, 6), ledger, beforeCourse)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-12", DateKey(sessions[5].Date))
}

func TestGenerateClassSessions_ExtraSessions(t *testing.T) {
	ledger := Ledger{Extras: []ExtraSession{
		{At: time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC), Note: "makeup", Seq: 1},
	}}

	sessions, err := GenerateClassSessions(mwfConfig(t, 6), ledger, beforeCourse)
	require.NoError(t, err)
	require.Len(t, sessions, 7)

	assert.Equal(t, []string{
		"2024-01-01", "2024-01-03", "2024-01-05", "2024-01-06",
		"2024-01-08", "2024-01-10", "2024-01-12",
	}, sessionKeys(sessions))

	extra := sessions[3]
	assert.True(t, extra.IsExtra)
	assert.Equal(t, 7, extra.Index)
	assert.Equal(t, "makeup", extra.Note)
	assert.Equal(t, int64(1), extra.LedgerSeq)
	assert.Len(t, Regular(sessions), 6)
}

func TestGenerateClassSessions_ExtraIndicesFollowDate(t *testing.T) {
	late := ExtraSession{At: time.Date(2024, 1, 13, 10, 0, 0, 0, time.UTC), Note: "late", Seq: 1}
	early := ExtraSession{At: time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC), Note: "early", Seq: 2}

	sessions, err := GenerateClassSessions(mwfConfig(t, 6), Ledger{Extras: []ExtraSession{late}}, beforeCourse)
	require.NoError(t, err)
	s, ok := FindByIndex(sessions, 7)
	require.True(t, ok)
	assert.Equal(t, "late", s.Note)

	// An earlier extra takes index 7 and pushes the existing one to 8.
	sessions, err = GenerateClassSessions(mwfConfig(t, 6), Ledger{Extras: []ExtraSession{late, early}}, beforeCourse)
	require.NoError(t, err)
	s, ok = FindByIndex(sessions, 7)
	require.True(t, ok)
	assert.Equal(t, "early", s.Note)
	s, ok = FindByIndex(sessions, 8)
	require.True(t, ok)
	assert.Equal(t, "late", s.Note)

	for i, r := range Regular(sessions) {
		assert.Equal(t, i+1, r.Index)
	}
}

func TestGenerateClassSessions_ExtraCancelled(t *testing.T) {
	ledger := Ledger{
		Extras: []ExtraSession{
			{At: time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC), Seq: 1},
			{At: time.Date(2024, 1, 13, 10, 0, 0, 0, time.UTC), Seq: 2},
		},
		Cancellations: []Cancellation{
			{Date: "2024-01-06", Target: CancelExtra, ExtraSeq: 1, Seq: 3},
		},
	}

	sessions, err := GenerateClassSessions(mwfConfig(t, 6), ledger, beforeCourse)
	require.NoError(t, err)
	require.Len(t, sessions, 7)

	// Removing an extra never extends the regular course.
	end, ok := EndDate(sessions)
	require.True(t, ok)
	assert.Equal(t, "2024-01-12", DateKey(end))

	last := sessions[6]
	assert.True(t, last.IsExtra)
	assert.Equal(t, 7, last.Index)
	assert.Equal(t, "2024-01-13", DateKey(last.Date))
}

func TestGenerateClassSessions_Locking(t *testing.T) {
	now := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	sessions, err := GenerateClassSessions(mwfConfig(t, 6), Ledger{}, now)
	require.NoError(t, err)

	locked := []bool{true, true, false, false, false, false}
	for i, s := range sessions {
		assert.Equal(t, locked[i], s.IsLocked, "session %d", s.Index)
	}
}

func TestGenerateClassSessions_InvalidConfig(t *testing.T) {
	cfg := mwfConfig(t, 6)
	cfg.Weekdays = 0

	_, err := GenerateClassSessions(cfg, Ledger{}, beforeCourse)
	assert.True(t, IsInvalidSchedule(err))
}

func TestGenerateClassSessions_Invariants(t *testing.T) {
	cfg := mwfConfig(t, 12)
	ledger := Ledger{
		Cancellations: []Cancellation{
			{Date: "2024-01-03", Target: CancelRegular, Seq: 1},
			{Date: "2024-01-15", Target: CancelRegular, Seq: 3},
			{Date: "2024-01-19", Target: CancelRegular, Seq: 5},
		},
		Shifts: []ShiftOverride{
			{FromIndex: 4, DeltaDays: 2, Seq: 2},
			{FromIndex: 8, DeltaDays: 9, Seq: 4},
		},
		Extras: []ExtraSession{
			{At: time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC), Seq: 6},
		},
	}

	first, err := GenerateClassSessions(cfg, ledger, beforeCourse)
	require.NoError(t, err)

	// Count invariant and index density for regular sessions.
	regular := Regular(first)
	require.Len(t, regular, cfg.TargetSessionCount)
	for i, s := range regular {
		assert.Equal(t, i+1, s.Index)
	}
	assert.Len(t, first, cfg.TargetSessionCount+1)

	// Monotonicity in index order.
	for i := 1; i < len(regular); i++ {
		assert.False(t, regular[i].Date.Before(regular[i-1].Date),
			"session %d before session %d", regular[i].Index, regular[i-1].Index)
	}

	// Output is sorted by date.
	for i := 1; i < len(first); i++ {
		assert.False(t, first[i].Date.Before(first[i-1].Date))
	}

	// Idempotent replay.
	second, err := GenerateClassSessions(cfg, ledger, beforeCourse)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCheckOrder(t *testing.T) {
	p, err := ParsePattern("T2 / T3 • 18:30")
	require.NoError(t, err)
	start, err := ParseDate("2024-01-01", time.UTC)
	require.NoError(t, err)
	cfg := NewConfig(p, start, 6, time.UTC)

	shift := ShiftOverride{FromIndex: 3, DeltaDays: -5, Seq: 1}
	sessions, err := GenerateClassSessions(cfg, Ledger{Shifts: []ShiftOverride{shift}}, beforeCourse)
	require.NoError(t, err)
	assert.Nil(t, CheckOrder(sessions))

	// Cancelling 01-01 renumbers the tail, so the -5 shift now lands
	// session 3 on 01-04, behind session 2 on 01-08.
	ledger := Ledger{
		Shifts:        []ShiftOverride{shift},
		Cancellations: []Cancellation{{Date: "2024-01-01", Target: CancelRegular, Seq: 2}},
	}
	sessions, err = GenerateClassSessions(cfg, ledger, beforeCourse)
	require.NoError(t, err)

	e := CheckOrder(sessions)
	require.NotNil(t, e)
	assert.Equal(t, ErrCodeInvalidShift, e.Code)
	assert.Equal(t, 3, e.Index)
	assert.Equal(t, "2024-01-04", e.Date)

	// Once the offending sessions are in the past they no longer count.
	sessions, err = GenerateClassSessions(cfg, ledger, time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, CheckOrder(sessions))
}

func TestFindAndOnDate(t *testing.T) {
	sessions, err := GenerateClassSessions(mwfConfig(t, 6), Ledger{}, beforeCourse)
	require.NoError(t, err)

	s, ok := FindByIndex(sessions, 4)
	require.True(t, ok)
	assert.Equal(t, "2024-01-08", DateKey(s.Date))

	_, ok = FindByIndex(sessions, 7)
	assert.False(t, ok)

	assert.Len(t, OnDate(sessions, "2024-01-10"), 1)
	assert.Empty(t, OnDate(sessions, "2024-01-09"))
}

func TestWindow(t *testing.T) {
	cfg := mwfConfig(t, 24)
	sessions, err := GenerateClassSessions(cfg, Ledger{}, beforeCourse)
	require.NoError(t, err)

	from, to := MonthWindow(2024, time.February, time.UTC)
	assert.Equal(t, "2024-01-25", DateKey(from))
	assert.Equal(t, "2024-03-08", DateKey(to))

	window := Window(sessions, from, to)
	require.NotEmpty(t, window)
	assert.Equal(t, "2024-01-26", DateKey(window[0].Date))
	for _, s := range window {
		assert.False(t, s.Date.Before(from))
		assert.True(t, s.Date.Before(to))
	}
}
