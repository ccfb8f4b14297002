package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/cadence/internal/classes"
	"github.com/roach88/cadence/internal/schedule"
	"github.com/roach88/cadence/internal/store"
	"github.com/roach88/cadence/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios with a fixed clock and sequential class IDs.
type Harness struct {
	service *classes.Service
	clock   *testutil.FixedClock
	loc     *time.Location
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Create the scenario class at the scenario's "now"
// 3. Apply steps, comparing each outcome with its expectation
// 4. Materialize the final schedule and evaluate assertions
//
// Errors are returned only for infrastructure failures and invalid
// scenario input; failed expectations are reported in Result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	now, err := time.Parse(time.RFC3339, scenario.Now)
	if err != nil {
		return nil, fmt.Errorf("invalid now %q: %w", scenario.Now, err)
	}

	clock := testutil.NewFixedClock(now)
	svc := classes.NewService(st,
		classes.WithClock(clock),
		classes.WithIDGenerator(testutil.NewSequentialIDs("class")),
		classes.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)

	ctx := context.Background()

	class, err := svc.CreateClass(ctx, classes.CreateRequest{
		Name:      className(scenario),
		Pattern:   scenario.Class.Pattern,
		StartDate: scenario.Class.Start,
		Sessions:  scenario.Class.Sessions,
		Timezone:  scenario.Class.Timezone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	h := &Harness{service: svc, clock: clock, loc: class.Config.Loc()}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, class.ID, i, step, result); err != nil {
			return nil, err
		}
	}

	sessions, err := svc.Sessions(ctx, class.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize sessions: %w", err)
	}
	entries, err := svc.Entries(ctx, class.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	result.Sessions = sessions
	result.LedgerSize = len(entries)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

func className(s *Scenario) string {
	if s.Class.Name != "" {
		return s.Class.Name
	}
	return s.Name
}

// executeStep applies one step and records its outcome.
func (h *Harness) executeStep(ctx context.Context, classID string, index int, step Step, result *Result) error {
	if step.SetNow != "" {
		t, err := time.Parse(time.RFC3339, step.SetNow)
		if err != nil {
			return fmt.Errorf("step %d: invalid set_now %q: %w", index, step.SetNow, err)
		}
		h.clock.Set(t)
		result.Steps = append(result.Steps, StepOutcome{
			Op:      OpSetNow,
			Expect:  ExpectOK,
			Success: true,
			Message: "clock set to " + t.UTC().Format(time.RFC3339),
		})
		return nil
	}

	var (
		res classes.Result
		err error
	)
	switch step.Op() {
	case OpCancel:
		res, err = h.service.CancelClassSession(ctx, classID, step.Cancel)

	case OpShift:
		to, perr := schedule.ParseDateTime(step.Shift.To, h.loc)
		if perr != nil {
			return fmt.Errorf("step %d: %w", index, perr)
		}
		res, err = h.service.UpdateScheduleChain(ctx, classID, step.Shift.Index, to)

	case OpExtra:
		at, perr := schedule.ParseDateTime(step.Extra.At, h.loc)
		if perr != nil {
			return fmt.Errorf("step %d: %w", index, perr)
		}
		res, err = h.service.AddExtraSession(ctx, classID, at, step.Extra.Note)
	}
	if err != nil {
		return fmt.Errorf("step %d (%s): %w", index, step.Op(), err)
	}

	expect := step.Expect
	if expect == "" {
		expect = ExpectOK
	}
	outcome := StepOutcome{
		Op:      step.Op(),
		Expect:  expect,
		Success: res.Success,
		Code:    string(res.Code),
		Message: res.Message,
	}
	result.Steps = append(result.Steps, outcome)

	switch {
	case expect == ExpectOK && !res.Success:
		result.AddError(fmt.Sprintf("step %d (%s): expected success, got %s: %s",
			index, outcome.Op, res.Code, res.Message))
	case expect != ExpectOK && res.Success:
		result.AddError(fmt.Sprintf("step %d (%s): expected %s, got success: %s",
			index, outcome.Op, expect, res.Message))
	case expect != ExpectOK && string(res.Code) != expect:
		result.AddError(fmt.Sprintf("step %d (%s): expected %s, got %s: %s",
			index, outcome.Op, expect, res.Code, res.Message))
	}

	return nil
}
