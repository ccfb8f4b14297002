package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculateSchedule(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	end, err := RecalculateSchedule("T2 / T4 / T6 • 18:30", start, 6)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-12", end)
}

func TestRecalculateSchedule_SingleSession(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	end, err := RecalculateSchedule("CN • 08:00", start, 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-07", end)
}

func TestRecalculateSchedule_Errors(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := RecalculateSchedule("T2 • 18:30", start, 0)
	assert.True(t, IsInvalidSchedule(err))

	_, err = RecalculateSchedule("• 18:30", start, 4)
	assert.True(t, IsInvalidSchedule(err))
}

func TestProjectionMatchesMaterializedEnd(t *testing.T) {
	patterns := []string{
		"T2 / T4 / T6 • 18:30",
		"T3 / T5 • 07:15",
		"T7 / CN • 09:00",
		"T2 / T3 / T4 / T5 / T6 / T7 / CN • 12:00",
	}
	starts := []string{"2024-01-01", "2024-02-27", "2024-12-30"}

	for _, pattern := range patterns {
		for _, s := range starts {
			for _, n := range []int{1, 5, 24} {
				start, err := ParseDate(s, time.UTC)
				require.NoError(t, err)
				p, err := ParsePattern(pattern)
				require.NoError(t, err)

				projected, err := RecalculateSchedule(pattern, start, n)
				require.NoError(t, err)

				sessions, err := GenerateClassSessions(NewConfig(p, start, n, time.UTC), Ledger{}, start)
				require.NoError(t, err)
				regular := Regular(sessions)
				require.Len(t, regular, n)

				assert.Equal(t, projected, DateKey(regular[n-1].Date), "%s from %s x%d", pattern, s, n)
			}
		}
	}
}
