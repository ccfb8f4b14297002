package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/cadence/internal/schedule"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks all assertions and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertSessionDates:
		got := make([]string, len(result.Sessions))
		for i, s := range result.Sessions {
			got[i] = schedule.DateKey(s.Date)
		}
		if strings.Join(got, ",") != strings.Join(a.Dates, ",") {
			return &AssertionError{
				Type:     a.Type,
				Expected: strings.Join(a.Dates, ", "),
				Actual:   strings.Join(got, ", "),
			}
		}

	case AssertSessionCount:
		return assertCount(a, len(schedule.Regular(result.Sessions)))

	case AssertExtraCount:
		return assertCount(a, len(result.Sessions)-len(schedule.Regular(result.Sessions)))

	case AssertLockedCount:
		locked := 0
		for _, s := range result.Sessions {
			if s.IsLocked {
				locked++
			}
		}
		return assertCount(a, locked)

	case AssertLedgerSize:
		return assertCount(a, result.LedgerSize)

	case AssertEndDate:
		end, ok := schedule.EndDate(result.Sessions)
		got := "(none)"
		if ok {
			got = schedule.DateKey(end)
		}
		if got != a.Date {
			return &AssertionError{Type: a.Type, Expected: a.Date, Actual: got}
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func assertCount(a Assertion, got int) error {
	if got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d", a.Count),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}
