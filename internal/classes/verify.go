package classes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/cadence/internal/schedule"
	"github.com/roach88/cadence/internal/store"
)

// Report is the outcome of replaying one class.
type Report struct {
	ClassID  string   `json:"class_id"`
	Entries  int      `json:"entries"`
	Sessions int      `json:"sessions"`
	Problems []string `json:"problems"`
}

// OK reports whether replay found no problems.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Verify replays a class's ledger and checks that materialization is
// deterministic and that the schedule invariants hold:
//   - the stored ledger seqs are exactly 1..version
//   - two materializations produce byte-identical canonical JSON
//   - regular sessions number exactly the target count with indices 1..N
//   - regular session dates do not decrease with index
func (s *Service) Verify(ctx context.Context, classID string, now time.Time) (Report, error) {
	state, err := s.repo.GetLedgerState(ctx, classID)
	if errors.Is(err, store.ErrClassNotFound) {
		return Report{}, classNotFound(classID)
	}
	if err != nil {
		return Report{}, err
	}
	c, err := classFromState(state)
	if err != nil {
		return Report{}, err
	}

	report := Report{ClassID: classID, Entries: len(state.Entries), Problems: []string{}}
	if !state.Dense {
		report.Problems = append(report.Problems,
			fmt.Sprintf("ledger seqs are not dense: last seq %d, version %d", state.LastSeq, c.Version))
	}

	first, err := c.Materialize(now)
	if err != nil {
		return Report{}, err
	}
	second, err := c.Materialize(now)
	if err != nil {
		return Report{}, err
	}
	a, err := SessionsJSON(first)
	if err != nil {
		return Report{}, err
	}
	b, err := SessionsJSON(second)
	if err != nil {
		return Report{}, err
	}
	if !bytes.Equal(a, b) {
		report.Problems = append(report.Problems, "materialization is not deterministic")
	}
	report.Sessions = len(first)

	regular := schedule.Regular(first)
	if len(regular) != c.Config.TargetSessionCount {
		report.Problems = append(report.Problems,
			fmt.Sprintf("expected %d regular sessions, got %d", c.Config.TargetSessionCount, len(regular)))
	}
	for i, sess := range regular {
		if sess.Index != i+1 {
			report.Problems = append(report.Problems,
				fmt.Sprintf("regular session at position %d has index %d", i+1, sess.Index))
		}
		if i > 0 && sess.Date.Before(regular[i-1].Date) {
			report.Problems = append(report.Problems,
				fmt.Sprintf("session %d (%s) is before session %d (%s)",
					sess.Index, schedule.DateKey(sess.Date), regular[i-1].Index, schedule.DateKey(regular[i-1].Date)))
		}
	}

	return report, nil
}
