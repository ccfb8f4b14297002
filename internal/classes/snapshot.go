package classes

import (
	"time"

	"github.com/roach88/cadence/internal/canon"
	"github.com/roach88/cadence/internal/schedule"
)

// SessionsJSON renders sessions as canonical JSON. Identical inputs produce
// identical bytes.
func SessionsJSON(sessions []schedule.Session) ([]byte, error) {
	return canon.Marshal(SessionsValue(sessions))
}

// SessionsValue converts sessions to canonical-JSON-ready values: one object
// per session with keys date (RFC 3339 in the class location), extra, index,
// locked, and note (extras only).
func SessionsValue(sessions []schedule.Session) []any {
	arr := make([]any, len(sessions))
	for i, s := range sessions {
		obj := map[string]any{
			"index":  s.Index,
			"date":   s.Date.Format(time.RFC3339),
			"locked": s.IsLocked,
			"extra":  s.IsExtra,
		}
		if s.IsExtra {
			obj["note"] = s.Note
		}
		arr[i] = obj
	}
	return arr
}
