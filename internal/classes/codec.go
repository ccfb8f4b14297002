package classes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/cadence/internal/canon"
	"github.com/roach88/cadence/internal/schedule"
	"github.com/roach88/cadence/internal/store"
)

// Ledger entry payloads. Each is stored as canonical JSON in
// ledger_entries.payload; the entry kind selects the payload type.

type cancelPayload struct {
	Date     string `json:"date"`
	Target   string `json:"target"`
	ExtraSeq int64  `json:"extra_seq,omitempty"`
}

func (p cancelPayload) fields() map[string]any {
	m := map[string]any{
		"date":   p.Date,
		"target": p.Target,
	}
	if p.ExtraSeq != 0 {
		m["extra_seq"] = p.ExtraSeq
	}
	return m
}

type shiftPayload struct {
	FromIndex int `json:"from_index"`
	DeltaDays int `json:"delta_days"`
}

func (p shiftPayload) fields() map[string]any {
	return map[string]any{
		"from_index": p.FromIndex,
		"delta_days": p.DeltaDays,
	}
}

type extraPayload struct {
	At   string `json:"at"`
	Note string `json:"note"`
}

func (p extraPayload) fields() map[string]any {
	return map[string]any{
		"at":   p.At,
		"note": p.Note,
	}
}

// payload is implemented by the three entry payloads.
type payload interface {
	fields() map[string]any
}

// encodePayload returns the canonical JSON for p.
func encodePayload(p payload) ([]byte, error) {
	data, err := canon.Marshal(p.fields())
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// decodeStrict unmarshals data into v, rejecting unknown fields.
func decodeStrict(data string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// DecodeLedger replays stored entries into a schedule.Ledger.
// Entries must be in seq order; unknown kinds or malformed payloads are errors.
func DecodeLedger(entries []store.LedgerEntry) (schedule.Ledger, error) {
	var ledger schedule.Ledger
	for _, e := range entries {
		if err := applyEntry(&ledger, e); err != nil {
			return schedule.Ledger{}, err
		}
	}
	return ledger, nil
}

func applyEntry(ledger *schedule.Ledger, e store.LedgerEntry) error {
	appliedAt, err := time.Parse(time.RFC3339, e.AppliedAt)
	if err != nil {
		return fmt.Errorf("ledger entry %d: applied_at %q: %w", e.Seq, e.AppliedAt, err)
	}

	switch e.Kind {
	case store.KindCancel:
		var p cancelPayload
		if err := decodeStrict(e.Payload, &p); err != nil {
			return fmt.Errorf("ledger entry %d: cancel payload: %w", e.Seq, err)
		}
		target := schedule.CancelTarget(p.Target)
		if target != schedule.CancelRegular && target != schedule.CancelExtra {
			return fmt.Errorf("ledger entry %d: unknown cancel target %q", e.Seq, p.Target)
		}
		ledger.Cancellations = append(ledger.Cancellations, schedule.Cancellation{
			Date:      p.Date,
			Target:    target,
			ExtraSeq:  p.ExtraSeq,
			Seq:       e.Seq,
			AppliedAt: appliedAt,
		})

	case store.KindShift:
		var p shiftPayload
		if err := decodeStrict(e.Payload, &p); err != nil {
			return fmt.Errorf("ledger entry %d: shift payload: %w", e.Seq, err)
		}
		ledger.Shifts = append(ledger.Shifts, schedule.ShiftOverride{
			FromIndex: p.FromIndex,
			DeltaDays: p.DeltaDays,
			Seq:       e.Seq,
			AppliedAt: appliedAt,
		})

	case store.KindExtra:
		var p extraPayload
		if err := decodeStrict(e.Payload, &p); err != nil {
			return fmt.Errorf("ledger entry %d: extra payload: %w", e.Seq, err)
		}
		at, err := time.Parse(time.RFC3339, p.At)
		if err != nil {
			return fmt.Errorf("ledger entry %d: extra at %q: %w", e.Seq, p.At, err)
		}
		ledger.Extras = append(ledger.Extras, schedule.ExtraSession{
			At:        at,
			Note:      p.Note,
			Seq:       e.Seq,
			AppliedAt: appliedAt,
		})

	default:
		return fmt.Errorf("ledger entry %d: unknown kind %q", e.Seq, e.Kind)
	}
	return nil
}

// newEntry builds the ledger entry for a payload appended at seq.
func newEntry(classID string, seq int64, kind string, p payload, appliedAt time.Time) (store.LedgerEntry, error) {
	data, err := encodePayload(p)
	if err != nil {
		return store.LedgerEntry{}, err
	}
	id, err := canon.EntryID(classID, seq, kind, data)
	if err != nil {
		return store.LedgerEntry{}, err
	}
	return store.LedgerEntry{
		ID:        id,
		ClassID:   classID,
		Seq:       seq,
		Kind:      kind,
		Payload:   string(data),
		AppliedAt: appliedAt.UTC().Format(time.RFC3339),
	}, nil
}
