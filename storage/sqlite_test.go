package storage

import (
	"path/filepath"
	"testing"
	"time"

	"ticket-bot/config"
	"ticket-bot/ticket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tickets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTicket(id int, channelID, userID string, family ticket.Family) ticket.Ticket {
	return ticket.Ticket{
		ID:        id,
		ChannelID: channelID,
		UserID:    userID,
		Username:  "someuser",
		Family:    family,
		Status:    ticket.StatusOpen,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteAddAndGet(t *testing.T) {
	s := newTestStore(t)

	in := sampleTicket(1234, "purchase-someuser", "u1", ticket.FamilyBoost)
	in.Details = ticket.Details{Package: "6 Server Boosts (1 Month)", Price: "5$", Quantity: 6, Duration: "1 month"}
	require.NoError(t, s.AddTicket(in))

	got, err := s.GetTicketByChannelID("purchase-someuser")
	require.NoError(t, err)
	assert.Equal(t, 1234, got.ID)
	assert.Equal(t, ticket.FamilyBoost, got.Family)
	assert.Equal(t, ticket.StatusOpen, got.Status)
	assert.Equal(t, "5$", got.Details.Price)
	assert.Equal(t, 6, got.Details.Quantity)
	assert.True(t, got.CreatedAt.Equal(in.CreatedAt))

	_, err = s.GetTicketByChannelID("no-such-channel")
	assert.ErrorIs(t, err, ticket.ErrNotFound)
}

func TestSQLiteDuplicateID(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddTicket(sampleTicket(1234, "purchase-a", "u1", ticket.FamilyBoost)))
	err := s.AddTicket(sampleTicket(1234, "purchase-b", "u2", ticket.FamilyBoost))
	assert.ErrorIs(t, err, ticket.ErrDuplicateID)
}

func TestSQLiteDuplicateOpenRejectedAtomically(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddTicket(sampleTicket(1234, "purchase-a", "u1", ticket.FamilyBoost)))

	// Same user, same family: the partial unique index rejects the
	// insert itself, no pre-check involved.
	err := s.AddTicket(sampleTicket(5678, "purchase-b", "u1", ticket.FamilyBoost))
	assert.ErrorIs(t, err, ticket.ErrDuplicateOpen)

	// Another family or another user is fine.
	assert.NoError(t, s.AddTicket(sampleTicket(5679, "tokens-a", "u1", ticket.FamilyNitro)))
	assert.NoError(t, s.AddTicket(sampleTicket(5680, "purchase-c", "u2", ticket.FamilyBoost)))
}

func TestSQLiteChannelIDIsUnique(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddTicket(sampleTicket(1234, "purchase-a", "u1", ticket.FamilyBoost)))
	// One channel backs exactly one ticket.
	assert.Error(t, s.AddTicket(sampleTicket(5678, "purchase-a", "u2", ticket.FamilyBoost)))
}

func TestSQLiteCloseFreesOpenSlot(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddTicket(sampleTicket(1234, "purchase-a", "u1", ticket.FamilyBoost)))
	require.NoError(t, s.CloseTicket(1234, time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC)))

	// The partial index only covers open rows, so the user may open a
	// fresh ticket in the family.
	assert.NoError(t, s.AddTicket(sampleTicket(5678, "purchase-b", "u1", ticket.FamilyBoost)))
}

func TestSQLiteOpenTicketForUser(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddTicket(sampleTicket(1234, "purchase-a", "u1", ticket.FamilyBoost)))
	require.NoError(t, s.CloseTicket(1234, time.Now()))
	require.NoError(t, s.AddTicket(sampleTicket(5678, "purchase-b", "u1", ticket.FamilyBoost)))

	got, err := s.OpenTicketForUser("u1", ticket.FamilyBoost)
	require.NoError(t, err)
	assert.Equal(t, 5678, got.ID)

	_, err = s.OpenTicketForUser("u1", ticket.FamilyAFK)
	assert.ErrorIs(t, err, ticket.ErrNotFound)
}

func TestSQLiteUpdateDetailsMerges(t *testing.T) {
	s := newTestStore(t)

	in := sampleTicket(1234, "purchase-a", "u1", ticket.FamilyBoost)
	in.Details = ticket.Details{Form: map[string]string{"project": "logo"}}
	require.NoError(t, s.AddTicket(in))

	require.NoError(t, s.UpdateTicketDetails(1234, ticket.Details{Package: "6 Server Boosts (1 Month)", Price: "5$", Quantity: 6}))

	got, err := s.GetTicketByChannelID("purchase-a")
	require.NoError(t, err)
	assert.Equal(t, "5$", got.Details.Price)
	// Earlier fields survive the merge.
	assert.Equal(t, "logo", got.Details.Form["project"])

	assert.ErrorIs(t, s.UpdateTicketDetails(9999, ticket.Details{Price: "5$"}), ticket.ErrNotFound)
}

func TestSQLiteCloseIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddTicket(sampleTicket(1234, "purchase-a", "u1", ticket.FamilyBoost)))

	first := time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC)
	require.NoError(t, s.CloseTicket(1234, first))
	require.NoError(t, s.CloseTicket(1234, first.Add(time.Hour)))

	got, err := s.GetTicketByChannelID("purchase-a")
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusClosed, got.Status)
	assert.True(t, got.ClosedAt.Equal(first))

	assert.ErrorIs(t, s.CloseTicket(9999, first), ticket.ErrNotFound)
}

func TestSQLiteReadAll(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddTicket(sampleTicket(1234, "purchase-a", "u1", ticket.FamilyBoost)))
	require.NoError(t, s.AddTicket(sampleTicket(5678, "tokens-b", "u2", ticket.FamilyNitro)))

	all, err := s.ReadAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInitStoreRejectsUnknownDriver(t *testing.T) {
	_, err := InitStore(&config.DatabaseConfig{Driver: "postgres"})
	assert.Error(t, err)
}

func TestInitStoreDefaultsToSQLite(t *testing.T) {
	s, err := InitStore(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "tickets.db")},
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
