package sync

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes sync failures for the caller's retry handling.
type ErrorCode string

const (
	// ErrCodeTransport indicates a network failure or non-2xx status.
	// The operation is retryable on the next trigger.
	ErrCodeTransport ErrorCode = "TRANSPORT"

	// ErrCodeStorage indicates a local store mutation failed and was
	// rolled back; the previous state remains authoritative.
	ErrCodeStorage ErrorCode = "STORAGE"
)

// SyncError is an error detected during a pull or push, carrying the
// category and the operation it came from.
type SyncError struct {
	Code ErrorCode
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

// Unwrap exposes the underlying error to errors.Is/As.
func (e *SyncError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is a transport-class sync
// failure. Uses errors.As to handle wrapped errors.
func IsTransportError(err error) bool {
	var se *SyncError
	return errors.As(err, &se) && se.Code == ErrCodeTransport
}

func transportErr(op string, err error) *SyncError {
	return &SyncError{Code: ErrCodeTransport, Op: op, Err: err}
}

func storageErr(op string, err error) *SyncError {
	return &SyncError{Code: ErrCodeStorage, Op: op, Err: err}
}
