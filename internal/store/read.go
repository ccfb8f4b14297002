package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const classColumns = `id, name, pattern, start_date, target_sessions, timezone, version, created_at`

// ReadClass retrieves a class row by ID.
// Returns ErrClassNotFound if no such class exists.
func (s *Store) ReadClass(ctx context.Context, id string) (ClassRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+classColumns+` FROM classes WHERE id = ?`, id)

	rec, err := scanClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ClassRecord{}, fmt.Errorf("read class %s: %w", id, ErrClassNotFound)
	}
	if err != nil {
		return ClassRecord{}, fmt.Errorf("read class %s: %w", id, err)
	}
	return rec, nil
}

// ListClasses returns all classes ordered by creation time, then ID.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListClasses(ctx context.Context) ([]ClassRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+classColumns+`
		FROM classes
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query classes: %w", err)
	}
	defer rows.Close()

	classes := []ClassRecord{}
	for rows.Next() {
		rec, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		classes = append(classes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classes: %w", err)
	}
	return classes, nil
}

// ReadLedger returns a class's ledger entries in deterministic order:
// ORDER BY seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) if the ledger is empty.
func (s *Store) ReadLedger(ctx context.Context, classID string) ([]LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, class_id, seq, kind, payload, applied_at
		FROM ledger_entries
		WHERE class_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, classID)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	entries := []LedgerEntry{}
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.ClassID, &e.Seq, &e.Kind, &e.Payload, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	return entries, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanClass(sc scanner) (ClassRecord, error) {
	var rec ClassRecord
	err := sc.Scan(
		&rec.ID, &rec.Name, &rec.Pattern, &rec.StartDate,
		&rec.TargetSessions, &rec.Timezone, &rec.Version, &rec.CreatedAt,
	)
	return rec, err
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
