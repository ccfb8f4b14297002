package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainLedgerEntry prefixes ledger entry hashes. The version suffix allows
// the algorithm to change without colliding with old IDs.
const DomainLedgerEntry = "cadence/ledger-entry/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EntryID computes the content-addressed ID of a ledger entry. The same class,
// seq, kind and payload always produce the same ID, which makes appends
// idempotent. payload must already be canonical JSON.
func EntryID(classID string, seq int64, kind string, payload []byte) (string, error) {
	data, err := Marshal(map[string]any{
		"class_id": classID,
		"seq":      seq,
		"kind":     kind,
		"payload":  string(payload),
	})
	if err != nil {
		return "", fmt.Errorf("EntryID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainLedgerEntry, data), nil
}
