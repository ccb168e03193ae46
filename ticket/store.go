package ticket

import "time"

// Store is the persistent ticket registry. All writes persist before
// returning so a crash never loses ticket state. Implementations live
// in the storage package.
type Store interface {
	// AddTicket inserts a new ticket. Returns ErrDuplicateID when the
	// id is taken (retryable) and ErrDuplicateOpen when the user
	// already holds an open ticket in the family — the uniqueness
	// invariant is enforced here, atomically, not by a pre-check.
	AddTicket(t Ticket) error

	// GetTicketByChannelID looks a ticket up by its backing channel.
	// Returns ErrNotFound when absent.
	GetTicketByChannelID(channelID string) (*Ticket, error)

	// OpenTicketForUser returns the user's open ticket in the family,
	// or ErrNotFound.
	OpenTicketForUser(userID string, family Family) (*Ticket, error)

	// UpdateTicketDetails merges fields into the ticket's details.
	// Returns ErrNotFound when absent.
	UpdateTicketDetails(id int, d Details) error

	// CloseTicket marks the ticket closed with the given timestamp.
	// Closing an already-closed ticket is a no-op, not an error;
	// ClosedAt keeps its first value. Returns ErrNotFound when absent.
	CloseTicket(id int, closedAt time.Time) error

	// ReadAll returns a full snapshot of every ticket.
	ReadAll() ([]Ticket, error)
}
