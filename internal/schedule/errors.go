package schedule

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes schedule errors.
type ErrorCode string

const (
	// ErrCodeInvalidSchedule indicates malformed recurrence input.
	ErrCodeInvalidSchedule ErrorCode = "INVALID_SCHEDULE"

	// ErrCodeNotFound indicates an unknown class or session reference.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeLockedSession indicates an attempt to mutate a past session.
	ErrCodeLockedSession ErrorCode = "LOCKED_SESSION"

	// ErrCodeInvalidShift indicates a chain shift that would break ordering.
	ErrCodeInvalidShift ErrorCode = "INVALID_SHIFT"
)

// Error is the structured error returned by the scheduler and its mutators.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ClassID identifies the affected class, when known.
	ClassID string

	// Index is the session index involved, or 0.
	Index int

	// Date is the ISO date involved, or "".
	Date string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ClassID != "" {
		return fmt.Sprintf("%s: %s (class=%s)", e.Code, e.Message, e.ClassID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not a schedule error.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsInvalidSchedule reports whether err is an INVALID_SCHEDULE error.
func IsInvalidSchedule(err error) bool { return CodeOf(err) == ErrCodeInvalidSchedule }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsLocked reports whether err is a LOCKED_SESSION error.
func IsLocked(err error) bool { return CodeOf(err) == ErrCodeLockedSession }

// IsInvalidShift reports whether err is an INVALID_SHIFT error.
func IsInvalidShift(err error) bool { return CodeOf(err) == ErrCodeInvalidShift }

// NewInvalidScheduleError creates an INVALID_SCHEDULE error.
func NewInvalidScheduleError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidSchedule, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError creates a NOT_FOUND error.
func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewLockedSessionError creates a LOCKED_SESSION error for the session at index.
func NewLockedSessionError(index int, date string) *Error {
	return &Error{
		Code:    ErrCodeLockedSession,
		Message: fmt.Sprintf("session %d on %s is in the past and cannot be changed", index, date),
		Index:   index,
		Date:    date,
	}
}

// NewInvalidShiftError creates an INVALID_SHIFT error.
func NewInvalidShiftError(index int, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidShift, Message: fmt.Sprintf(format, args...), Index: index}
}
