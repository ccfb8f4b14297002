package store

import (
	"context"
	"fmt"
)

// CreateClass inserts a class row at version 0.
// Fails if a class with the same ID exists.
func (s *Store) CreateClass(ctx context.Context, rec ClassRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO classes
		(id, name, pattern, start_date, target_sessions, timezone, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`,
		rec.ID,
		rec.Name,
		rec.Pattern,
		rec.StartDate,
		rec.TargetSessions,
		rec.Timezone,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// AppendEntry appends a ledger entry validated against expectedVersion.
//
// Within one transaction it:
//  1. returns inserted=false if an entry with the same ID already exists
//     (the same logical append was already committed)
//  2. bumps classes.version from expectedVersion to expectedVersion+1,
//     failing with ErrVersionConflict if the class moved on, or
//     ErrClassNotFound if it does not exist
//  3. inserts the entry
//
// entry.Seq must equal expectedVersion+1.
func (s *Store) AppendEntry(ctx context.Context, entry LedgerEntry, expectedVersion int64) (inserted bool, err error) {
	if entry.Seq != expectedVersion+1 {
		return false, fmt.Errorf("append entry: seq %d does not follow version %d", entry.Seq, expectedVersion)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("append entry: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger_entries WHERE id = ?`, entry.ID,
	).Scan(&existing); err != nil {
		return false, fmt.Errorf("append entry: check existing: %w", err)
	}
	if existing > 0 {
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("append entry: commit (existing): %w", err)
		}
		return false, nil
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE classes SET version = version + 1
		WHERE id = ? AND version = ?
	`, entry.ClassID, expectedVersion)
	if err != nil {
		return false, fmt.Errorf("append entry: bump version: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append entry: rows affected: %w", err)
	}
	if rows == 0 {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM classes WHERE id = ?`, entry.ClassID,
		).Scan(&count); err != nil {
			return false, fmt.Errorf("append entry: check class: %w", err)
		}
		if count == 0 {
			return false, fmt.Errorf("append entry %s: %w", entry.ClassID, ErrClassNotFound)
		}
		return false, fmt.Errorf("append entry %s at version %d: %w", entry.ClassID, expectedVersion, ErrVersionConflict)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries
		(id, class_id, seq, kind, payload, applied_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.ClassID,
		entry.Seq,
		entry.Kind,
		entry.Payload,
		entry.AppliedAt,
	)
	if err != nil {
		return false, fmt.Errorf("append entry: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("append entry: commit: %w", err)
	}

	return true, nil
}
