package classes

import "github.com/roach88/cadence/internal/schedule"

// Result is the discriminated outcome of a mutator call.
//
// Success=false with a Code is an expected rejection (locked session, invalid
// shift, unknown reference) that the caller displays; it is not an error.
type Result struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Code    schedule.ErrorCode `json:"code,omitempty"`

	// Seq is the ledger seq of the accepted entry, or 0.
	Seq int64 `json:"seq,omitempty"`
}

func accepted(seq int64, message string) Result {
	return Result{Success: true, Message: message, Seq: seq}
}

func rejected(err *schedule.Error) Result {
	return Result{Success: false, Message: err.Message, Code: err.Code}
}
