package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	cause := errors.New("disk full")
	err := Storage(cause)

	require.ErrorIs(t, err, ErrStorageWriteFailed)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "storage write failed: disk full", err.Error())

	// Wrapping twice keeps a single tag.
	require.Same(t, err, Storage(err))
	require.NoError(t, Storage(nil))
}

func TestPlatform(t *testing.T) {
	cause := errors.New("missing permissions")
	err := fmt.Errorf("error creating channel: %w", Platform(cause))

	require.ErrorIs(t, err, ErrPlatformActionFailed)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrStorageWriteFailed)
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "not configured", err: ErrGuildNotConfigured, want: true},
		{name: "session", err: fmt.Errorf("error: %w", ErrSessionNotFound), want: true},
		{name: "duplicate", err: ErrDuplicateTicket, want: true},
		{name: "not a ticket", err: ErrNotATicketChannel, want: true},
		{name: "platform", err: Platform(errors.New("x")), want: true},
		{name: "selection", err: ErrInvalidSelection, want: true},
		{name: "storage", err: Storage(errors.New("x")), want: false},
		{name: "unknown", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsUserFacing(tt.err))
		})
	}
}
