package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestClass inserts a Mon/Wed/Fri class with the given ID.
func createTestClass(t *testing.T, s *Store, id string) ClassRecord {
	t.Helper()
	rec := ClassRecord{
		ID:             id,
		Name:           "Class " + id,
		Pattern:        "T2 / T4 / T6 • 18:30",
		StartDate:      "2024-01-01",
		TargetSessions: 6,
		Timezone:       "UTC",
		CreatedAt:      "2024-01-01T00:00:00Z",
	}
	if err := s.CreateClass(context.Background(), rec); err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return rec
}

// createTestEntry builds a cancel entry with minimal required fields.
func createTestEntry(classID string, seq int64) LedgerEntry {
	return LedgerEntry{
		ID:        fmt.Sprintf("%s-entry-%d", classID, seq),
		ClassID:   classID,
		Seq:       seq,
		Kind:      KindCancel,
		Payload:   `{"date":"2024-01-05","target":"regular"}`,
		AppliedAt: "2024-01-02T00:00:00Z",
	}
}
