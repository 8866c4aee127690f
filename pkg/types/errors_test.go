package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", NewValidationError("status", "is required"), CodeValidationFault},
		{"wrapped validation", fmt.Errorf("insert: %w", NewValidationError("x", "y")), CodeValidationFault},
		{"permission", ErrPermissionDenied, CodePermissionDenied},
		{"not found", ErrNotFound, CodeNotFound},
		{"invalid id", ErrInvalidID, CodeNotFound},
		{"decode", &DecodeError{Err: errors.New("bad blob")}, CodeDecodeFault},
		{"storage", &StorageError{Op: "read", Err: errors.New("io")}, CodeStorageFault},
		{"wrapped storage", fmt.Errorf("attach: %w", &StorageError{Op: "open", Err: errors.New("io")}), CodeStorageFault},
		{"unclassified", errors.New("mystery"), CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("tracking_number", "is required")
	assert.Equal(t, `field "tracking_number": is required`, err.Error())
}

func TestStorageErrorUnwrap(t *testing.T) {
	inner := errors.New("disk on fire")
	err := &StorageError{Op: "write", Err: inner}
	assert.ErrorIs(t, err, inner)
}
