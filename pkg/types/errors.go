package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across stores.
var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidID        = errors.New("invalid record ID")
	ErrPermissionDenied = errors.New("permission denied")
	ErrDetached         = errors.New("backend is detached")
	ErrAlreadyAttached  = errors.New("backend is already attached")
)

// ValidationError reports a field value that violates its rule. It is
// surfaced to the caller verbatim and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// DecodeError reports a persisted settings blob that none of the known
// codecs could parse. Strict accessors surface it; non-strict accessors
// recover by falling back to defaults.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("settings blob not decodable by any known codec: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StorageError reports a failed read or write on the underlying storage
// primitive. Op names the operation that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Machine-readable error codes for structured failure responses.
const (
	CodeValidationFault  = "validation_fault"
	CodePermissionDenied = "permission_denied"
	CodeNotFound         = "not_found"
	CodeDecodeFault      = "decode_fault"
	CodeStorageFault     = "storage_fault"
	CodeUnknown          = "unknown"
)

// ErrorCode maps an error from this package's taxonomy to its
// machine-readable code.
func ErrorCode(err error) string {
	var verr *ValidationError
	var derr *DecodeError
	var serr *StorageError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return CodeValidationFault
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidID):
		return CodeNotFound
	case errors.As(err, &derr):
		return CodeDecodeFault
	case errors.As(err, &serr):
		return CodeStorageFault
	default:
		return CodeUnknown
	}
}
