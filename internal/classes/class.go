package classes

import (
	"fmt"
	"time"

	"github.com/roach88/cadence/internal/schedule"
	"github.com/roach88/cadence/internal/store"
)

// Class is the schedule aggregate: configuration, ledger and the ledger
// version both were read at.
type Class struct {
	ID        string
	Name      string
	Timezone  string
	Config    schedule.Config
	Ledger    schedule.Ledger
	Version   int64
	CreatedAt time.Time
}

// Pattern returns the canonical pattern string, e.g. "T2 / T4 / T6 • 18:30".
func (c Class) Pattern() string {
	return c.Config.Pattern().String()
}

// ProjectedEnd returns the planned end date, ignoring the ledger.
func (c Class) ProjectedEnd() (time.Time, error) {
	return schedule.ProjectEndDate(c.Config)
}

// Materialize returns the class's sessions with lock flags relative to now.
func (c Class) Materialize(now time.Time) ([]schedule.Session, error) {
	return schedule.GenerateClassSessions(c.Config, c.Ledger, now)
}

// classFromState rebuilds the aggregate from stored rows.
func classFromState(state store.LedgerState) (Class, error) {
	rec := state.Class

	loc, err := time.LoadLocation(rec.Timezone)
	if err != nil {
		return Class{}, fmt.Errorf("class %s: timezone %q: %w", rec.ID, rec.Timezone, err)
	}
	pattern, err := schedule.ParsePattern(rec.Pattern)
	if err != nil {
		return Class{}, fmt.Errorf("class %s: %w", rec.ID, err)
	}
	start, err := schedule.ParseDate(rec.StartDate, loc)
	if err != nil {
		return Class{}, fmt.Errorf("class %s: %w", rec.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339, rec.CreatedAt)
	if err != nil {
		return Class{}, fmt.Errorf("class %s: created_at %q: %w", rec.ID, rec.CreatedAt, err)
	}
	ledger, err := DecodeLedger(state.Entries)
	if err != nil {
		return Class{}, fmt.Errorf("class %s: %w", rec.ID, err)
	}

	return Class{
		ID:        rec.ID,
		Name:      rec.Name,
		Timezone:  rec.Timezone,
		Config:    schedule.NewConfig(pattern, start, rec.TargetSessions, loc),
		Ledger:    ledger,
		Version:   rec.Version,
		CreatedAt: createdAt,
	}, nil
}
