package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrSnapshotNotFound", err: ErrSnapshotNotFound, expected: true},
		{
			name:     "wrapped ErrSnapshotNotFound",
			err:      fmt.Errorf("failed to load: %w", ErrSnapshotNotFound),
			expected: true,
		},
		{
			name:     "store error wrapping not found",
			err:      NewStoreError("snapshot", "load", "nothing saved", ErrSnapshotNotFound),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Run("with wrapped error", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := NewStoreError("medicine", "save", "insert failed", cause)

		assert.Equal(t, "save operation on medicine failed: insert failed: connection reset", err.Error())
		assert.ErrorIs(t, err, cause)

		var storeErr *StoreError
		assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &storeErr))
		assert.Equal(t, "medicine", storeErr.Entity)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := NewStoreError("record", "load", "bad row", nil)
		assert.Equal(t, "load operation on record failed: bad row", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}
