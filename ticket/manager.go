package ticket

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"
)

// Platform is the outbound channel-operation delegate. The manager
// never talks to Discord directly; handlers implement this over the
// session and tests fake it.
type Platform interface {
	// CreateChannel creates the backing ticket channel and returns its id.
	CreateChannel(name string, family Family, userID string) (string, error)
	RenameChannel(channelID, name string) error
	DeleteChannel(channelID string) error
}

// maxIDAttempts bounds ticket-id allocation retries. Ids are drawn from
// a small range because they appear in customer-facing embeds, so
// collisions are expected and retried rather than treated as fatal.
const maxIDAttempts = 5

// Manager owns every write to ticket records. State machine per ticket:
// open (no selection) -> open (selected) -> closed, closed is terminal.
type Manager struct {
	store    Store
	platform Platform
	catalog  Catalog
	clock    Clock
	grace    time.Duration

	newID func() int
}

// NewManager wires the lifecycle core. grace is the delay between a
// confirmed close and the physical channel delete, long enough for the
// farewell message to be read.
func NewManager(store Store, platform Platform, catalog Catalog, clock Clock, grace time.Duration) *Manager {
	return &Manager{
		store:    store,
		platform: platform,
		catalog:  catalog,
		clock:    clock,
		grace:    grace,
		newID:    func() int { return rand.IntN(9000) + 1000 },
	}
}

// OpenTicket creates a ticket and its backing channel for the user. If
// the user already holds an open ticket in the family the request is
// rejected with a DuplicateOpenTicketError pointing at the existing
// channel. selected optionally carries a catalog option value chosen
// from the panel menu; initial carries fields collected before the
// ticket existed (form submissions). Both land in the fresh ticket's
// details.
func (m *Manager) OpenTicket(userID, username string, family Family, selected string, initial Details) (*Ticket, error) {
	if !ValidFamily(string(family)) {
		return nil, ErrInvalidOption
	}

	// Advisory pre-check so the common duplicate case never creates a
	// channel. The store insert below is the authoritative gate.
	if existing, err := m.store.OpenTicketForUser(userID, family); err == nil {
		return nil, &DuplicateOpenTicketError{ChannelID: existing.ChannelID}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}

	name := channelName(family, username)
	channelID, err := m.platform.CreateChannel(name, family, userID)
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}

	t := Ticket{
		ChannelID: channelID,
		UserID:    userID,
		Username:  username,
		Family:    family,
		Status:    StatusOpen,
		CreatedAt: m.clock.Now(),
	}

	inserted := false
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		t.ID = m.newID()
		err := m.store.AddTicket(t)
		if err == nil {
			inserted = true
			break
		}
		if errors.Is(err, ErrDuplicateID) {
			continue
		}
		if errors.Is(err, ErrDuplicateOpen) {
			// Lost the race against a near-simultaneous open from the
			// same user. Tear down our channel and point at theirs.
			m.deleteChannel(channelID)
			if existing, lookupErr := m.store.OpenTicketForUser(userID, family); lookupErr == nil {
				return nil, &DuplicateOpenTicketError{ChannelID: existing.ChannelID}
			}
			return nil, &DuplicateOpenTicketError{}
		}
		m.deleteChannel(channelID)
		return nil, fmt.Errorf("insert ticket: %w", err)
	}
	if !inserted {
		m.deleteChannel(channelID)
		return nil, ErrAllocationExhausted
	}

	if !detailsEmpty(initial) {
		if err := m.store.UpdateTicketDetails(t.ID, initial); err != nil {
			log.Printf("[Tickets] Failed to record initial details for #%d: %v", t.ID, err)
		} else {
			t.Details.Merge(initial)
		}
	}

	if selected != "" {
		if opt := m.catalog.Find(family, selected); opt != nil {
			if err := m.applySelection(&t, opt); err != nil {
				log.Printf("[Tickets] Failed to record panel selection for #%d: %v", t.ID, err)
			}
		} else {
			log.Printf("[Tickets] Panel sent unknown option %q for family %s", selected, family)
		}
	}

	return &t, nil
}

// SelectPackage validates the option against the ticket's family
// catalog and merges its price/quantity/duration into the details.
// Returns the updated ticket and the matched option for rendering.
func (m *Manager) SelectPackage(channelID, value string) (*Ticket, *Option, error) {
	t, err := m.store.GetTicketByChannelID(channelID)
	if err != nil {
		return nil, nil, err
	}
	opt := m.catalog.Find(t.Family, value)
	if opt == nil {
		return nil, nil, ErrInvalidOption
	}
	if err := m.applySelection(t, opt); err != nil {
		return nil, nil, err
	}
	return t, opt, nil
}

func (m *Manager) applySelection(t *Ticket, opt *Option) error {
	d := opt.Details()
	if err := m.store.UpdateTicketDetails(t.ID, d); err != nil {
		return fmt.Errorf("update details: %w", err)
	}
	t.Details.Merge(d)

	// Nitro tickets encode the chosen duration in the channel name
	// (tokens1-/tokens3-). Presentation side effect, best-effort.
	if t.Family == FamilyNitro && opt.Duration != "" {
		name := fmt.Sprintf("tokens%s-%s", strings.Fields(opt.Duration)[0], sanitizeName(t.Username))
		if err := m.platform.RenameChannel(t.ChannelID, name); err != nil {
			log.Printf("[Tickets] Failed to rename channel %s: %v", t.ChannelID, err)
		}
	}
	return nil
}

// UpdateDetails merges free-form fields (e.g. modal form submissions)
// into the ticket identified by its channel.
func (m *Manager) UpdateDetails(channelID string, d Details) (*Ticket, error) {
	t, err := m.store.GetTicketByChannelID(channelID)
	if err != nil {
		return nil, err
	}
	if err := m.store.UpdateTicketDetails(t.ID, d); err != nil {
		return nil, err
	}
	t.Details.Merge(d)
	return t, nil
}

// RequestClose gates the two-step close protocol. Only an admin actor
// may proceed; the returned ticket backs the confirmation prompt. No
// state is persisted — a cancel leaves the ticket untouched.
func (m *Manager) RequestClose(channelID string, actorIsAdmin bool) (*Ticket, error) {
	if !actorIsAdmin {
		return nil, ErrPermissionDenied
	}
	return m.store.GetTicketByChannelID(channelID)
}

// FinalizeClose marks the ticket closed and schedules the backing
// channel for deletion after the grace delay. Closing an already-closed
// ticket is a no-op: ClosedAt keeps its first value and no second
// deletion is scheduled.
func (m *Manager) FinalizeClose(channelID string) (*Ticket, error) {
	t, err := m.store.GetTicketByChannelID(channelID)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusClosed {
		return t, nil
	}

	now := m.clock.Now()
	if err := m.store.CloseTicket(t.ID, now); err != nil {
		return nil, fmt.Errorf("close ticket: %w", err)
	}
	t.Status = StatusClosed
	t.ClosedAt = now

	channel := t.ChannelID
	m.clock.AfterFunc(m.grace, func() {
		// Best-effort: the channel may already be gone. Log and move
		// on, never retry.
		m.deleteChannel(channel)
	})
	return t, nil
}

// Lookup returns the ticket backing the channel, if any. Read-only.
func (m *Manager) Lookup(channelID string) (*Ticket, error) {
	return m.store.GetTicketByChannelID(channelID)
}

// Tickets returns a full snapshot for listings and reconciliation.
func (m *Manager) Tickets() ([]Ticket, error) {
	return m.store.ReadAll()
}

func (m *Manager) deleteChannel(channelID string) {
	if err := m.platform.DeleteChannel(channelID); err != nil {
		log.Printf("[Tickets] Failed to delete channel %s: %v", channelID, err)
	}
}

func detailsEmpty(d Details) bool {
	return d.Package == "" && d.Price == "" && d.Quantity == 0 &&
		d.Duration == "" && d.BotType == "" && len(d.Form) == 0
}

func channelName(family Family, username string) string {
	return family.Info().Prefix + sanitizeName(username)
}

func sanitizeName(username string) string {
	s := strings.ToLower(username)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
