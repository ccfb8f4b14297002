package store

import "errors"

// ErrClassNotFound is returned when a class ID has no row.
var ErrClassNotFound = errors.New("class not found")

// ErrVersionConflict is returned when an append names a stale class version.
var ErrVersionConflict = errors.New("class version conflict")

// Entry kinds stored in ledger_entries.kind.
const (
	KindCancel = "cancel"
	KindShift  = "shift"
	KindExtra  = "extra"
)

// ClassRecord is a row of the classes table. Dates and times are stored as
// text: StartDate as YYYY-MM-DD, CreatedAt as RFC 3339.
type ClassRecord struct {
	ID             string
	Name           string
	Pattern        string
	StartDate      string
	TargetSessions int
	Timezone       string
	Version        int64
	CreatedAt      string
}

// LedgerEntry is a row of the ledger_entries table. Payload is canonical JSON.
type LedgerEntry struct {
	ID        string
	ClassID   string
	Seq       int64
	Kind      string
	Payload   string
	AppliedAt string
}
