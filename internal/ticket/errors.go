package ticket

import (
	"errors"
	"fmt"
)

var (
	// ErrGuildOnly is returned when a ticket operation is invoked outside
	// a guild (e.g. in a direct message).
	ErrGuildOnly = errors.New("ticket: guild context required")

	// ErrNotTicket is returned when close is invoked in a channel whose
	// name does not carry the ticket prefix.
	ErrNotTicket = errors.New("ticket: not a ticket channel")

	// ErrNotAuthorized is returned when the invoker is neither the owner,
	// a support-role holder, nor a channel manager.
	ErrNotAuthorized = errors.New("ticket: not authorized")
)

// DuplicateError reports that the requester already has an open ticket.
// ChannelID references the existing channel so callers can point at it.
type DuplicateError struct {
	ChannelID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("ticket: owner already has an open ticket in channel %s", e.ChannelID)
}

// PlatformError wraps a failed gateway operation. No retry is attempted.
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("ticket: platform operation %s failed: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

func platformErr(op string, err error) error {
	return &PlatformError{Op: op, Err: err}
}
