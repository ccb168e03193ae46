package ticket

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the store has no record for the referenced
	// ticket or channel.
	ErrNotFound = errors.New("ticket not found")

	// ErrInvalidOption means the selected value is not in the active
	// catalog for the ticket's family.
	ErrInvalidOption = errors.New("invalid catalog option")

	// ErrDuplicateID means the generated ticket id is already taken.
	// Callers retry allocation; it is never surfaced to users.
	ErrDuplicateID = errors.New("ticket id already in use")

	// ErrDuplicateOpen is returned by Store.AddTicket when the insert
	// would violate the one-open-ticket-per-(user, family) invariant.
	ErrDuplicateOpen = errors.New("user already has an open ticket in this family")

	// ErrAllocationExhausted means id allocation failed repeatedly.
	// Fatal for the single request, not for the process.
	ErrAllocationExhausted = errors.New("ticket id allocation exhausted")

	// ErrPermissionDenied means the actor lacks the administrator
	// capability required for the operation.
	ErrPermissionDenied = errors.New("administrator permission required")
)

// DuplicateOpenTicketError rejects an open request and carries the
// channel of the ticket the user already holds, so callers can link it.
type DuplicateOpenTicketError struct {
	ChannelID string
}

func (e *DuplicateOpenTicketError) Error() string {
	return fmt.Sprintf("user already has an open ticket in channel %s", e.ChannelID)
}

func (e *DuplicateOpenTicketError) Is(target error) bool {
	return target == ErrDuplicateOpen
}
