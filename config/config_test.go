package config

import (
	"os"
	"path/filepath"
	"testing"

	"ticket-bot/ticket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"discord": {"token": "abc", "guild_id": "123"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/tickets.db", cfg.Database.SQLite.Path)
	assert.Equal(t, 5, cfg.Tickets.GraceDelaySeconds)
	assert.Equal(t, "#00D9A3", cfg.Colors.Primary)
	assert.Equal(t, cfg.Colors.Primary, cfg.Welcome.Colour)
	assert.NotEmpty(t, cfg.Catalog.Boost)
	assert.NotEmpty(t, cfg.Catalog.Nitro)
}

func TestLoadConfigKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"driver": "mongodb", "mongodb": {"uri": "mongodb://localhost", "database": "tickets"}},
		"tickets": {"grace_delay_seconds": 10},
		"catalog": {"boost_options": [{"value": "boost_custom", "label": "Custom", "price": "9$"}]}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mongodb", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Tickets.GraceDelaySeconds)
	require.Len(t, cfg.Catalog.Boost, 1)
	assert.Equal(t, "boost_custom", cfg.Catalog.Boost[0].Value)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := writeConfig(t, `{}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	cfg.Welcome.Enabled = true
	cfg.Welcome.ChannelID = "555"
	require.NoError(t, SaveConfig(cfg, path))

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Welcome.Enabled)
	assert.Equal(t, "555", reloaded.Welcome.ChannelID)
}

func TestTicketCatalogLookup(t *testing.T) {
	path := writeConfig(t, `{}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	catalog := cfg.TicketCatalog()

	opt := catalog.Find(ticket.FamilyBoost, "boost_6_1m")
	require.NotNil(t, opt)
	assert.Equal(t, "5$", opt.Price)
	assert.Equal(t, 6, opt.Quantity)

	assert.Nil(t, catalog.Find(ticket.FamilyBoost, "nitro_1month"))
	assert.Nil(t, catalog.Find(ticket.FamilyLobby, "anything"))
}

func TestCategoryFor(t *testing.T) {
	cfg := &Config{
		Tickets: TicketsConfig{
			Categories:      map[string]string{"boost": "111"},
			DefaultCategory: "999",
		},
	}
	assert.Equal(t, "111", cfg.CategoryFor(ticket.FamilyBoost))
	assert.Equal(t, "999", cfg.CategoryFor(ticket.FamilyNitro))
}

func TestParseColour(t *testing.T) {
	assert.Equal(t, 0x00D9A3, ParseColour("#00D9A3"))
	assert.Equal(t, 0x5865F2, ParseColour("5865F2"))
	assert.Equal(t, 0, ParseColour("not-a-colour"))
}
