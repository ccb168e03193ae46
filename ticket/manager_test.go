package ticket

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	tickets map[int]*Ticket
	addErrs []error
	// precheckMisses makes OpenTicketForUser report ErrNotFound for
	// that many calls, simulating the window between the advisory
	// pre-check and the insert.
	precheckMisses int
}

func newFakeStore() *fakeStore {
	return &fakeStore{tickets: make(map[int]*Ticket)}
}

func (s *fakeStore) AddTicket(t Ticket) error {
	if len(s.addErrs) > 0 {
		err := s.addErrs[0]
		s.addErrs = s.addErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := s.tickets[t.ID]; ok {
		return ErrDuplicateID
	}
	for _, existing := range s.tickets {
		if existing.UserID == t.UserID && existing.Family == t.Family && existing.Status == StatusOpen {
			return ErrDuplicateOpen
		}
	}
	copied := t
	s.tickets[t.ID] = &copied
	return nil
}

func (s *fakeStore) GetTicketByChannelID(channelID string) (*Ticket, error) {
	for _, t := range s.tickets {
		if t.ChannelID == channelID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) OpenTicketForUser(userID string, family Family) (*Ticket, error) {
	if s.precheckMisses > 0 {
		s.precheckMisses--
		return nil, ErrNotFound
	}
	for _, t := range s.tickets {
		if t.UserID == userID && t.Family == family && t.Status == StatusOpen {
			copied := *t
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) UpdateTicketDetails(id int, d Details) error {
	t, ok := s.tickets[id]
	if !ok {
		return ErrNotFound
	}
	t.Details.Merge(d)
	return nil
}

func (s *fakeStore) CloseTicket(id int, closedAt time.Time) error {
	t, ok := s.tickets[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status == StatusClosed {
		return nil
	}
	t.Status = StatusClosed
	t.ClosedAt = closedAt
	return nil
}

func (s *fakeStore) ReadAll() ([]Ticket, error) {
	out := make([]Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, *t)
	}
	return out, nil
}

type fakePlatform struct {
	created   []string
	renamed   map[string]string
	deleted   []string
	deleteErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{renamed: make(map[string]string)}
}

// CreateChannel uses the channel name as its id, which keeps the
// assertions readable.
func (p *fakePlatform) CreateChannel(name string, family Family, userID string) (string, error) {
	p.created = append(p.created, name)
	return name, nil
}

func (p *fakePlatform) RenameChannel(channelID, name string) error {
	p.renamed[channelID] = name
	return nil
}

func (p *fakePlatform) DeleteChannel(channelID string) error {
	p.deleted = append(p.deleted, channelID)
	return p.deleteErr
}

type fakeClock struct {
	now       time.Time
	scheduled []func()
	delays    []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) {
	c.delays = append(c.delays, d)
	c.scheduled = append(c.scheduled, f)
}

func (c *fakeClock) fire() {
	for _, f := range c.scheduled {
		f()
	}
	c.scheduled = nil
}

func testCatalog() Catalog {
	return Catalog{
		FamilyBoost: {
			{Value: "boost_6_1m", Label: "6 Server Boosts (1 Month)", Price: "5$", Quantity: 6, Duration: "1 month"},
		},
		FamilyNitro: {
			{Value: "nitro_1month", Label: "Nitro 1 Month", Price: "1.50$", Duration: "1 month"},
			{Value: "nitro_3month", Label: "Nitro 3 Months", Price: "4.00$", Duration: "3 months"},
		},
	}
}

func newTestManager(t *testing.T) (*Manager, *fakeStore, *fakePlatform, *fakeClock) {
	t.Helper()
	store := newFakeStore()
	platform := newFakePlatform()
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(store, platform, testCatalog(), clock, 5*time.Second)
	return m, store, platform, clock
}

func TestOpenTicketCreatesChannelWithFamilyPrefix(t *testing.T) {
	m, _, platform, _ := newTestManager(t)

	tk, err := m.OpenTicket("u1", "SomeUser", FamilyBoost, "", Details{})
	require.NoError(t, err)

	assert.Equal(t, "purchase-someuser", tk.ChannelID)
	assert.Equal(t, []string{"purchase-someuser"}, platform.created)
	assert.Equal(t, StatusOpen, tk.Status)
	assert.GreaterOrEqual(t, tk.ID, 1000)
	assert.LessOrEqual(t, tk.ID, 9999)
}

func TestOpenTicketRejectsSecondOpenInSameFamily(t *testing.T) {
	m, _, platform, _ := newTestManager(t)

	first, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	require.NoError(t, err)

	_, err = m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	var dup *DuplicateOpenTicketError
	require.ErrorAs(t, err, &dup)
	assert.ErrorIs(t, err, ErrDuplicateOpen)
	assert.Equal(t, first.ChannelID, dup.ChannelID)

	// The pre-check rejects before any channel is created.
	assert.Len(t, platform.created, 1)
}

func TestOpenTicketAllowsSecondFamilyAndReopenAfterClose(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	_, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	require.NoError(t, err)

	// A different family is independent.
	_, err = m.OpenTicket("u1", "someuser", FamilyNitro, "", Details{})
	require.NoError(t, err)

	// Closing frees the slot.
	first, err := m.Lookup("purchase-someuser")
	require.NoError(t, err)
	_, err = m.FinalizeClose(first.ChannelID)
	require.NoError(t, err)

	_, err = m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	require.NoError(t, err)
}

func TestOpenTicketLosesInsertRace(t *testing.T) {
	m, store, platform, _ := newTestManager(t)

	// The advisory pre-check passes but the insert hits the store's
	// uniqueness gate, as when two opens interleave.
	winner := Ticket{ID: 1234, ChannelID: "purchase-other", UserID: "u1", Family: FamilyBoost, Status: StatusOpen}
	require.NoError(t, store.AddTicket(winner))
	store.precheckMisses = 1

	_, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	var dup *DuplicateOpenTicketError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "purchase-other", dup.ChannelID)

	// The freshly created channel was torn down.
	assert.Equal(t, []string{"purchase-someuser"}, platform.deleted)
}

func TestOpenTicketRetriesIDCollision(t *testing.T) {
	m, store, _, _ := newTestManager(t)
	store.addErrs = []error{ErrDuplicateID, ErrDuplicateID}

	tk, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	require.NoError(t, err)
	assert.NotNil(t, store.tickets[tk.ID])
}

func TestOpenTicketAllocationExhausted(t *testing.T) {
	m, store, platform, _ := newTestManager(t)
	store.addErrs = []error{ErrDuplicateID, ErrDuplicateID, ErrDuplicateID, ErrDuplicateID, ErrDuplicateID}

	_, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	assert.ErrorIs(t, err, ErrAllocationExhausted)
	assert.Equal(t, []string{"purchase-someuser"}, platform.deleted)
}

func TestOpenTicketAppliesPanelSelection(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	tk, err := m.OpenTicket("u1", "someuser", FamilyBoost, "boost_6_1m", Details{})
	require.NoError(t, err)

	assert.Equal(t, "6 Server Boosts (1 Month)", tk.Details.Package)
	assert.Equal(t, "5$", tk.Details.Price)
	assert.Equal(t, 6, tk.Details.Quantity)
	assert.Equal(t, "1 month", tk.Details.Duration)
}

func TestOpenTicketKeepsInitialFormDetails(t *testing.T) {
	m, store, _, _ := newTestManager(t)

	tk, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{Form: map[string]string{"project": "logo"}})
	require.NoError(t, err)

	assert.Equal(t, "logo", tk.Details.Form["project"])
	assert.Equal(t, "logo", store.tickets[tk.ID].Details.Form["project"])
}

func TestSelectPackageMergesDetails(t *testing.T) {
	m, store, _, _ := newTestManager(t)

	tk, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	require.NoError(t, err)

	updated, opt, err := m.SelectPackage(tk.ChannelID, "boost_6_1m")
	require.NoError(t, err)
	assert.Equal(t, "boost_6_1m", opt.Value)
	assert.Equal(t, "5$", updated.Details.Price)
	assert.Equal(t, 6, store.tickets[tk.ID].Details.Quantity)
}

func TestSelectPackageRejectsUnknownOption(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	tk, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	require.NoError(t, err)

	_, _, err = m.SelectPackage(tk.ChannelID, "boost_99_1m")
	assert.ErrorIs(t, err, ErrInvalidOption)

	// Options from another family's catalog do not apply either.
	_, _, err = m.SelectPackage(tk.ChannelID, "nitro_1month")
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestSelectPackageNotATicketChannel(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	_, _, err := m.SelectPackage("random-channel", "boost_6_1m")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSelectPackageRenamesNitroChannel(t *testing.T) {
	m, _, platform, _ := newTestManager(t)

	tk, err := m.OpenTicket("u1", "SomeUser", FamilyNitro, "", Details{})
	require.NoError(t, err)
	assert.Equal(t, "tokens-someuser", tk.ChannelID)

	_, _, err = m.SelectPackage(tk.ChannelID, "nitro_3month")
	require.NoError(t, err)
	assert.Equal(t, "tokens3-someuser", platform.renamed[tk.ChannelID])
}

func TestRequestCloseRequiresAdmin(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	tk, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	require.NoError(t, err)

	_, err = m.RequestClose(tk.ChannelID, false)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	got, err := m.RequestClose(tk.ChannelID, true)
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)

	// A request alone never mutates the ticket.
	current, err := m.Lookup(tk.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, current.Status)
}

func TestFinalizeCloseSchedulesGraceDelete(t *testing.T) {
	m, _, platform, clock := newTestManager(t)

	tk, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	require.NoError(t, err)

	closed, err := m.FinalizeClose(tk.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)
	assert.Equal(t, clock.now, closed.ClosedAt)

	// The channel survives until the grace delay elapses.
	require.Len(t, clock.delays, 1)
	assert.Equal(t, 5*time.Second, clock.delays[0])
	assert.Empty(t, platform.deleted)

	clock.fire()
	assert.Equal(t, []string{tk.ChannelID}, platform.deleted)
}

func TestFinalizeCloseIsIdempotent(t *testing.T) {
	m, _, _, clock := newTestManager(t)

	tk, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	require.NoError(t, err)

	first, err := m.FinalizeClose(tk.ChannelID)
	require.NoError(t, err)
	firstClosedAt := first.ClosedAt

	clock.now = clock.now.Add(time.Hour)
	second, err := m.FinalizeClose(tk.ChannelID)
	require.NoError(t, err)

	assert.Equal(t, firstClosedAt, second.ClosedAt)
	// No second deletion was scheduled.
	assert.Len(t, clock.delays, 1)
}

func TestFinalizeCloseToleratesDeleteFailure(t *testing.T) {
	m, _, platform, clock := newTestManager(t)
	platform.deleteErr = errors.New("channel already gone")

	tk, err := m.OpenTicket("u1", "someuser", FamilyBoost, "", Details{})
	require.NoError(t, err)

	closed, err := m.FinalizeClose(tk.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)

	clock.fire()

	// The record stays closed even though the delete failed.
	got, err := m.Lookup(tk.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, got.Status)
}

func TestOpenTicketRejectsUnknownFamily(t *testing.T) {
	m, _, platform, _ := newTestManager(t)

	_, err := m.OpenTicket("u1", "someuser", Family("giveaways"), "", Details{})
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.Empty(t, platform.created)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "some-user_99", sanitizeName("Some-User_99"))
	assert.Equal(t, "user", sanitizeName("ЖЖЖ"))
	assert.Equal(t, "abc", sanitizeName("a b c!"))
}
