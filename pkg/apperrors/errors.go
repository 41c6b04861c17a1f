package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrGuildNotConfigured is returned when a guild is missing support roles or channels.
	ErrGuildNotConfigured = errors.New("guild not configured")

	// ErrSessionNotFound is returned when role selection arrives without an active configuration session.
	ErrSessionNotFound = errors.New("configuration session not found")

	// ErrDuplicateTicket is returned when the author already has an open ticket.
	ErrDuplicateTicket = errors.New("duplicate ticket")

	// ErrNotATicketChannel is returned when a close is requested in a channel that is not a ticket.
	ErrNotATicketChannel = errors.New("not a ticket channel")

	// ErrStorageWriteFailed is returned when the durable store rejects a write.
	ErrStorageWriteFailed = errors.New("storage write failed")

	// ErrPlatformActionFailed is returned when the chat platform rejects an action.
	ErrPlatformActionFailed = errors.New("platform action failed")

	// ErrNotFound is returned by the store when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSelection is returned when the role selection is empty or too large.
	ErrInvalidSelection = errors.New("invalid role selection")
)

// kindError tags a cause with one of the taxonomy sentinels.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind.Error(), e.cause.Error())
}

// Is reports whether target is the kind sentinel.
func (e *kindError) Is(target error) bool {
	return target == e.kind
}

// Unwrap returns the cause so errors.Is and errors.As reach it.
func (e *kindError) Unwrap() error {
	return e.cause
}

// Storage tags err as a storage write failure. A nil err returns nil.
func Storage(err error) error {
	return wrap(ErrStorageWriteFailed, err)
}

// Platform tags err as a platform action failure. A nil err returns nil.
func Platform(err error) error {
	return wrap(ErrPlatformActionFailed, err)
}

func wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return &kindError{kind: kind, cause: err}
}

// IsUserFacing reports whether err is reported back to the member that triggered the event.
func IsUserFacing(err error) bool {
	switch {
	case errors.Is(err, ErrStorageWriteFailed):
		return false
	case errors.Is(err, ErrGuildNotConfigured),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrDuplicateTicket),
		errors.Is(err, ErrNotATicketChannel),
		errors.Is(err, ErrPlatformActionFailed),
		errors.Is(err, ErrInvalidSelection):
		return true
	}
	return false
}
