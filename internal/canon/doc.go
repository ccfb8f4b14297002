// Package canon produces RFC 8785 canonical JSON and content-addressed IDs
// for ledger entries.
//
// Canonical bytes are the only serialization used for entry payloads, entry
// IDs and replay comparison, so the same logical value always yields the same
// bytes:
//   - object keys sorted by UTF-16 code units
//   - no insignificant whitespace, no HTML escaping
//   - strings NFC-normalized
//   - floats and null rejected
package canon
