package harness

import "github.com/roach88/cadence/internal/schedule"

// StepOutcome records what one step did.
type StepOutcome struct {
	Op      string `json:"op"`
	Expect  string `json:"expect"`
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step matched its expectation and all assertions held.
	Pass bool `json:"pass"`

	// Steps holds one outcome per step, in order.
	Steps []StepOutcome `json:"steps"`

	// Sessions is the final materialized schedule.
	Sessions []schedule.Session `json:"-"`

	// LedgerSize is the final number of ledger entries.
	LedgerSize int `json:"ledger_size"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepOutcome{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
