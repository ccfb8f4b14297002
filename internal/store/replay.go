package store

import (
	"context"
	"fmt"
)

// LedgerState is a class row together with its full ledger, plus integrity
// analysis used by replay verification.
type LedgerState struct {
	Class   ClassRecord
	Entries []LedgerEntry
	LastSeq int64

	// Dense is true when entry seqs are exactly 1..Class.Version.
	Dense bool
}

// GetLedgerState reads a class and its ledger in one read transaction so the
// version and the entries are consistent with each other.
func (s *Store) GetLedgerState(ctx context.Context, classID string) (LedgerState, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerState{}, fmt.Errorf("get ledger state: begin tx: %w", err)
	}
	defer tx.Rollback()

	rec, err := scanClass(tx.QueryRowContext(ctx, `SELECT `+classColumns+` FROM classes WHERE id = ?`, classID))
	if err != nil {
		if isNoRows(err) {
			return LedgerState{}, fmt.Errorf("get ledger state %s: %w", classID, ErrClassNotFound)
		}
		return LedgerState{}, fmt.Errorf("get ledger state: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, class_id, seq, kind, payload, applied_at
		FROM ledger_entries
		WHERE class_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, classID)
	if err != nil {
		return LedgerState{}, fmt.Errorf("get ledger state: query ledger: %w", err)
	}
	defer rows.Close()

	state := LedgerState{Class: rec, Entries: []LedgerEntry{}, Dense: true}
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.ClassID, &e.Seq, &e.Kind, &e.Payload, &e.AppliedAt); err != nil {
			return LedgerState{}, fmt.Errorf("get ledger state: scan: %w", err)
		}
		if e.Seq != state.LastSeq+1 {
			state.Dense = false
		}
		state.LastSeq = e.Seq
		state.Entries = append(state.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return LedgerState{}, fmt.Errorf("get ledger state: iterate: %w", err)
	}
	if state.LastSeq != rec.Version {
		state.Dense = false
	}

	return state, nil
}
