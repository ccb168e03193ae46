package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"ticket-bot/ticket"
)

type Config struct {
	Discord  DiscordConfig  `json:"discord"`
	Database DatabaseConfig `json:"database"`
	Tickets  TicketsConfig  `json:"tickets"`
	Welcome  WelcomeConfig  `json:"welcome"`
	Notify   NotifyConfig   `json:"notify"`
	Colors   ColorsConfig   `json:"colors"`
	Catalog  CatalogConfig  `json:"catalog"`
	Lang     LangConfig     `json:"lang"`
}

type DiscordConfig struct {
	Token   string `json:"token"`
	GuildID string `json:"guild_id"`
}

type DatabaseConfig struct {
	Driver  string        `json:"driver"`
	SQLite  SQLiteConfig  `json:"sqlite"`
	MongoDB MongoDBConfig `json:"mongodb"`
}

type SQLiteConfig struct {
	Path string `json:"path"`
}

type MongoDBConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

type TicketsConfig struct {
	// Categories maps a ticket family to the Discord category id its
	// channels are created under. Missing families fall back to Default.
	Categories      map[string]string `json:"categories"`
	DefaultCategory string            `json:"default_category"`
	StaffRoles      []string          `json:"staff_roles"`
	LogChannel      string            `json:"log_channel"`
	// GraceDelaySeconds is the pause between a confirmed close and the
	// channel delete, so the farewell message can be read.
	GraceDelaySeconds int `json:"grace_delay_seconds"`
}

type WelcomeConfig struct {
	Enabled       bool   `json:"enabled"`
	ChannelID     string `json:"channel_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Colour        string `json:"colour"`
	Image         string `json:"image"`
	Footer        string `json:"footer"`
	WebsiteButton bool   `json:"website_button"`
	WebsiteURL    string `json:"website_url"`
}

type NotifyConfig struct {
	AMQP AMQPConfig `json:"amqp"`
}

type AMQPConfig struct {
	URL   string `json:"url"`
	Queue string `json:"queue"`
}

type ColorsConfig struct {
	Primary string `json:"primary"`
	Warning string `json:"warning"`
	Error   string `json:"error"`
}

type LangConfig struct {
	Path string `json:"path"`
}

// CatalogConfig holds the per-family package tables. Static: loaded at
// startup, never mutated at runtime.
type CatalogConfig struct {
	Boost []ticket.Option `json:"boost_options"`
	Bot   []ticket.Option `json:"bot_options"`
	Nitro []ticket.Option `json:"nitro_options"`
	AFK   []ticket.Option `json:"afk_options"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = "data/tickets.db"
	}
	if cfg.Tickets.GraceDelaySeconds <= 0 {
		cfg.Tickets.GraceDelaySeconds = 5
	}
	if cfg.Colors.Primary == "" {
		cfg.Colors.Primary = "#00D9A3"
	}
	if cfg.Colors.Warning == "" {
		cfg.Colors.Warning = "#FFA500"
	}
	if cfg.Colors.Error == "" {
		cfg.Colors.Error = "#ED4245"
	}
	if cfg.Welcome.Colour == "" {
		cfg.Welcome.Colour = cfg.Colors.Primary
	}
	if cfg.Welcome.Title == "" {
		cfg.Welcome.Title = "Welcome to Factory Boosts!"
	}
	if cfg.Welcome.Footer == "" {
		cfg.Welcome.Footer = "Factory Boosts"
	}
	if cfg.Lang.Path == "" {
		cfg.Lang.Path = "lang.yml"
	}
	if len(cfg.Catalog.Boost) == 0 {
		cfg.Catalog.Boost = defaultBoostOptions()
	}
	if len(cfg.Catalog.Bot) == 0 {
		cfg.Catalog.Bot = defaultBotOptions()
	}
	if len(cfg.Catalog.Nitro) == 0 {
		cfg.Catalog.Nitro = defaultNitroOptions()
	}
	if len(cfg.Catalog.AFK) == 0 {
		cfg.Catalog.AFK = defaultAFKOptions()
	}
}

// TicketCatalog assembles the immutable catalog consumed by the
// lifecycle manager and the panels.
func (cfg *Config) TicketCatalog() ticket.Catalog {
	return ticket.Catalog{
		ticket.FamilyBoost: cfg.Catalog.Boost,
		ticket.FamilyBot:   cfg.Catalog.Bot,
		ticket.FamilyNitro: cfg.Catalog.Nitro,
		ticket.FamilyAFK:   cfg.Catalog.AFK,
	}
}

// CategoryFor returns the Discord category id for the family's ticket
// channels, falling back to the default category.
func (cfg *Config) CategoryFor(f ticket.Family) string {
	if id, ok := cfg.Tickets.Categories[string(f)]; ok && id != "" {
		return id
	}
	return cfg.Tickets.DefaultCategory
}

// ParseColour converts "#00D9A3" style hex into the int Discord embeds
// expect. Invalid input yields 0 (embed default).
func ParseColour(hex string) int {
	v, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 64)
	if err != nil {
		return 0
	}
	return int(v)
}

func defaultBoostOptions() []ticket.Option {
	return []ticket.Option{
		{Value: "boost_6_1m", Label: "6 Server Boosts (1 Month)", Description: "6 boosts for your server, 1 month", Price: "5$", Quantity: 6, Duration: "1 month"},
		{Value: "boost_8_1m", Label: "8 Server Boosts (1 Month)", Description: "8 boosts for your server, 1 month", Price: "7$", Quantity: 8, Duration: "1 month"},
		{Value: "boost_14_1m", Label: "14 Server Boosts (1 Month)", Description: "14 boosts for your server, 1 month", Price: "11$", Quantity: 14, Duration: "1 month"},
		{Value: "boost_6_3m", Label: "6 Server Boosts (3 Months)", Description: "6 boosts for your server, 3 months", Price: "15$", Quantity: 6, Duration: "3 months"},
		{Value: "boost_8_3m", Label: "8 Server Boosts (3 Months)", Description: "8 boosts for your server, 3 months", Price: "20$", Quantity: 8, Duration: "3 months"},
		{Value: "boost_14_3m", Label: "14 Server Boosts (3 Months)", Description: "14 boosts for your server, 3 months", Price: "35$", Quantity: 14, Duration: "3 months"},
	}
}

func defaultBotOptions() []ticket.Option {
	return []ticket.Option{
		{Value: "bot_basic", Label: "Basic Bot", Description: "Simple commands & moderation", Price: "From 15$", Type: "Basic Bot"},
		{Value: "bot_advanced", Label: "Advanced Bot", Description: "Multiple systems & economy", Price: "From 30$", Type: "Advanced Bot"},
		{Value: "bot_premium", Label: "Premium Bot", Description: "Full customization & features", Price: "From 50$", Type: "Premium Bot"},
		{Value: "bot_custom", Label: "Custom Quote", Description: "Unique & complex projects", Price: "Contact staff", Type: "Custom Quote"},
	}
}

func defaultNitroOptions() []ticket.Option {
	return []ticket.Option{
		{Value: "nitro_1month", Label: "Nitro 1 Month", Description: "1 month Nitro token, instant delivery", Price: "1.50$", Duration: "1 month"},
		{Value: "nitro_3month", Label: "Nitro 3 Months", Description: "3 month Nitro token, instant delivery", Price: "4.00$", Duration: "3 months"},
	}
}

func defaultAFKOptions() []ticket.Option {
	return []ticket.Option{
		{Value: "afk_7d", Label: "AFK Tool (7 Days)", Description: "1 week of automated farming", Price: "5$", Duration: "7 days"},
		{Value: "afk_30d", Label: "AFK Tool (30 Days)", Description: "1 month of automated farming", Price: "15$", Duration: "30 days"},
		{Value: "afk_lifetime", Label: "AFK Tool (Lifetime)", Description: "Lifetime access to the tool", Price: "50$", Duration: "lifetime"},
	}
}
