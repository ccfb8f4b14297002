package classes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cadence/internal/schedule"
)

func TestSessionsJSON(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, at(2024, 1, 2, 0, 0))
	c := createMWF(t, svc, 2)

	_, err := svc.AddExtraSession(ctx, c.ID, at(2024, 1, 2, 9, 0), "intro")
	require.NoError(t, err)

	sessions, err := svc.Sessions(ctx, c.ID)
	require.NoError(t, err)

	got, err := SessionsJSON(sessions)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"date":"2024-01-01T18:30:00Z","extra":false,"index":1,"locked":true},`+
			`{"date":"2024-01-02T09:00:00Z","extra":true,"index":3,"locked":false,"note":"intro"},`+
			`{"date":"2024-01-03T18:30:00Z","extra":false,"index":2,"locked":false}]`,
		string(got))
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, beforeCourse)
	c := createMWF(t, svc, 12)

	for _, d := range []string{"2024-01-03", "2024-01-15"} {
		res, err := svc.CancelClassSession(ctx, c.ID, d)
		require.NoError(t, err)
		require.True(t, res.Success, res.Message)
	}
	res, err := svc.UpdateScheduleChain(ctx, c.ID, 5, at(2024, 1, 13, 18, 30))
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	res, err = svc.AddExtraSession(ctx, c.ID, at(2024, 1, 20, 9, 0), "")
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	report, err := svc.Verify(ctx, c.ID, beforeCourse)
	require.NoError(t, err)
	assert.True(t, report.OK(), "problems: %v", report.Problems)
	assert.Equal(t, 4, report.Entries)
	assert.Equal(t, 13, report.Sessions)
}

func TestVerify_DetectsLedgerGap(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t, beforeCourse)
	c := createMWF(t, svc, 6)

	_, err := st.DB().Exec(`
		INSERT INTO ledger_entries (id, class_id, seq, kind, payload, applied_at)
		VALUES ('gap', ?, 2, 'cancel', '{"date":"2024-01-05","target":"regular"}', '2024-01-01T00:00:00Z')
	`, c.ID)
	require.NoError(t, err)

	report, err := svc.Verify(ctx, c.ID, beforeCourse)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Contains(t, report.Problems[0], "not dense")
}

func TestVerify_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t, beforeCourse)

	_, err := svc.Verify(context.Background(), "missing", beforeCourse)
	assert.True(t, schedule.IsNotFound(err))
}
