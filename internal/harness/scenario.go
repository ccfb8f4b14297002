package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cadence/internal/schedule"
)

// Scenario defines a schedule test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Now is the initial clock value (RFC 3339).
	Now string `yaml:"now"`

	// Class is the class created before the first step.
	Class ClassSetup `yaml:"class"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final sessions and ledger.
	Assertions []Assertion `yaml:"assertions"`
}

// ClassSetup holds the creation inputs of the scenario's class.
type ClassSetup struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Start    string `yaml:"start"`
	Sessions int    `yaml:"sessions"`
	Timezone string `yaml:"timezone,omitempty"`
}

// Step is one mutator call or clock change. Exactly one of Cancel, Shift,
// Extra and SetNow must be set.
type Step struct {
	// Cancel is the date passed to CancelClassSession.
	Cancel string `yaml:"cancel,omitempty"`

	// Shift is an UpdateScheduleChain call.
	Shift *ShiftStep `yaml:"shift,omitempty"`

	// Extra is an AddExtraSession call.
	Extra *ExtraStep `yaml:"extra,omitempty"`

	// SetNow moves the clock (RFC 3339).
	SetNow string `yaml:"set_now,omitempty"`

	// Expect is "ok" (the default) or the expected rejection code.
	Expect string `yaml:"expect,omitempty"`
}

// ShiftStep holds UpdateScheduleChain arguments.
type ShiftStep struct {
	Index int    `yaml:"index"`
	To    string `yaml:"to"`
}

// ExtraStep holds AddExtraSession arguments.
type ExtraStep struct {
	At   string `yaml:"at"`
	Note string `yaml:"note,omitempty"`
}

// Op returns the step's operation name.
func (s Step) Op() string {
	switch {
	case s.Cancel != "":
		return OpCancel
	case s.Shift != nil:
		return OpShift
	case s.Extra != nil:
		return OpExtra
	case s.SetNow != "":
		return OpSetNow
	default:
		return ""
	}
}

// Step operation names.
const (
	OpCancel = "cancel"
	OpShift  = "shift"
	OpExtra  = "extra"
	OpSetNow = "set_now"
)

// ExpectOK is the expect value of a step that must succeed.
const ExpectOK = "ok"

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "session_dates": ISO dates of all sessions in date order
	// - "session_count": number of regular sessions
	// - "extra_count": number of extra sessions
	// - "locked_count": number of locked sessions
	// - "ledger_size": number of ledger entries
	// - "end_date": date of the last regular session
	Type string `yaml:"type"`

	// Dates is the expected date list (session_dates).
	Dates []string `yaml:"dates,omitempty"`

	// Count is the expected count (*_count, ledger_size).
	Count int `yaml:"count,omitempty"`

	// Date is the expected date (end_date).
	Date string `yaml:"date,omitempty"`
}

// Assertion type constants.
const (
	AssertSessionDates = "session_dates"
	AssertSessionCount = "session_count"
	AssertExtraCount   = "extra_count"
	AssertLockedCount  = "locked_count"
	AssertLedgerSize   = "ledger_size"
	AssertEndDate      = "end_date"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and step/assertion shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Now == "" {
		return fmt.Errorf("now is required")
	}
	if s.Class.Pattern == "" {
		return fmt.Errorf("class.pattern is required")
	}
	if s.Class.Start == "" {
		return fmt.Errorf("class.start is required")
	}
	if s.Class.Sessions <= 0 {
		return fmt.Errorf("class.sessions must be positive")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step Step) error {
	set := 0
	if step.Cancel != "" {
		set++
	}
	if step.Shift != nil {
		set++
	}
	if step.Extra != nil {
		set++
	}
	if step.SetNow != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of cancel, shift, extra, set_now is required", index)
	}

	if step.SetNow != "" && step.Expect != "" {
		return fmt.Errorf("steps[%d]: set_now takes no expect", index)
	}
	if step.Shift != nil && step.Shift.To == "" {
		return fmt.Errorf("steps[%d]: shift.to is required", index)
	}
	if step.Extra != nil && step.Extra.At == "" {
		return fmt.Errorf("steps[%d]: extra.at is required", index)
	}

	switch schedule.ErrorCode(step.Expect) {
	case "", ExpectOK,
		schedule.ErrCodeInvalidSchedule,
		schedule.ErrCodeNotFound,
		schedule.ErrCodeLockedSession,
		schedule.ErrCodeInvalidShift:
	default:
		return fmt.Errorf("steps[%d]: unknown expect %q", index, step.Expect)
	}

	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertSessionDates:
		if len(a.Dates) == 0 {
			return fmt.Errorf("assertions[%d]: dates is required for session_dates", index)
		}
	case AssertSessionCount, AssertExtraCount, AssertLockedCount, AssertLedgerSize:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertEndDate:
		if a.Date == "" {
			return fmt.Errorf("assertions[%d]: date is required for end_date", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
