package classes

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cadence/internal/schedule"
	"github.com/roach88/cadence/internal/store"
	"github.com/roach88/cadence/internal/testutil"
)

var beforeCourse = time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)

// newTestService opens a temp store and returns a service frozen at now.
func newTestService(t *testing.T, now time.Time) (*Service, *store.Store, *testutil.FixedClock) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := testutil.NewFixedClock(now)
	svc := NewService(st,
		WithClock(clock),
		WithIDGenerator(testutil.NewSequentialIDs("c")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return svc, st, clock
}

// createMWF creates the Mon/Wed/Fri 18:30 class starting 2024-01-01.
func createMWF(t *testing.T, svc *Service, sessions int) Class {
	t.Helper()
	c, err := svc.CreateClass(context.Background(), CreateRequest{
		Name:      "Evening English",
		Pattern:   "T2 / T4 / T6 • 18:30",
		StartDate: "2024-01-01",
		Sessions:  sessions,
	})
	require.NoError(t, err)
	return c
}

func sessionDates(t *testing.T, svc *Service, classID string) []string {
	t.Helper()
	sessions, err := svc.Sessions(context.Background(), classID)
	require.NoError(t, err)
	keys := make([]string, len(sessions))
	for i, s := range sessions {
		keys[i] = schedule.DateKey(s.Date)
	}
	return keys
}
