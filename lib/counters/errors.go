package counters

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint32

const (
	RetCInvalidArgument   RetCode = iota + 1 // 1: null/oversized input or out-of-range id.
	RetCInvalidState                         // 2: record not in the state the operation requires (e.g. double free).
	RetCCapacityExceeded                     // 3: no counter ids available.
	RetCCorruptedRecord                      // 4: reader encountered an unexpected record state value.
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type returned by this package. It wraps a return code
// (of type RetCode) and a message. CapacityExceeded and InvalidState are
// recoverable conditions callers are expected to branch on.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInvalidArgument:
		errorCode = "InvalidArgument"
	case RetCInvalidState:
		errorCode = "InvalidState"
	case RetCCapacityExceeded:
		errorCode = "CapacityExceeded"
	case RetCCorruptedRecord:
		errorCode = "CorruptedRecord"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("CountersError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// HasCode reports whether err is (or wraps) a counters Error carrying the
// given return code.
func HasCode(err error, code RetCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func newErrorf(code RetCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}
