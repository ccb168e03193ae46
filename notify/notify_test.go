package notify

import (
	"encoding/json"
	"testing"
	"time"

	"ticket-bot/ticket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderEventCarriesSelectionFields(t *testing.T) {
	tk := &ticket.Ticket{
		ID:        1234,
		ChannelID: "purchase-someuser",
		UserID:    "u1",
		Username:  "someuser",
		Family:    ticket.FamilyBoost,
	}
	opt := &ticket.Option{
		Value:    "boost_6_1m",
		Label:    "6 Server Boosts (1 Month)",
		Price:    "5$",
		Quantity: 6,
		Duration: "1 month",
	}

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	body, err := json.Marshal(newOrderEvent(tk, opt, at))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, float64(1234), decoded["ticket_id"])
	assert.Equal(t, "boost", decoded["family"])
	assert.Equal(t, "6 Server Boosts (1 Month)", decoded["package"])
	assert.Equal(t, "5$", decoded["price"])
	assert.Equal(t, float64(6), decoded["quantity"])
	assert.Equal(t, "1 month", decoded["duration"])
	assert.Equal(t, "2026-08-01T12:00:00Z", decoded["at"])
}

func TestOrderEventOmitsUnsetFields(t *testing.T) {
	tk := &ticket.Ticket{ID: 1, ChannelID: "lobby-a", UserID: "u1", Username: "a", Family: ticket.FamilyLobby}
	opt := &ticket.Option{Value: "x", Label: "Bot Lobby Tool", Price: "Contact staff"}

	body, err := json.Marshal(newOrderEvent(tk, opt, time.Now()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.NotContains(t, decoded, "quantity")
	assert.NotContains(t, decoded, "duration")
}
