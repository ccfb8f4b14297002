package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/cadence/internal/canon"
	"github.com/roach88/cadence/internal/classes"
)

// Snapshot renders a scenario result as canonical JSON: the scenario name,
// every step outcome and the final sessions.
func Snapshot(name string, result *Result) ([]byte, error) {
	steps := make([]any, len(result.Steps))
	for i, s := range result.Steps {
		step := map[string]any{
			"op":      s.Op,
			"expect":  s.Expect,
			"success": s.Success,
			"message": s.Message,
		}
		if s.Code != "" {
			step["code"] = s.Code
		}
		steps[i] = step
	}

	return canon.Marshal(map[string]any{
		"scenario_name": name,
		"steps":         steps,
		"sessions":      classes.SessionsValue(result.Sessions),
		"ledger_size":   result.LedgerSize,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot, err := Snapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return result, nil
}
