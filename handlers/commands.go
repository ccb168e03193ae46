package handlers

import (
	"fmt"
	"log"
	"sync"
	"time"

	"ticket-bot/config"
	"ticket-bot/notify"
	"ticket-bot/ticket"

	"github.com/bwmarrin/discordgo"
)

var (
	Cfg        *config.Config
	ConfigPath string
	Manager    *ticket.Manager
	Notifier   *notify.Notifier
)

var adminPerm int64 = discordgo.PermissionAdministrator

func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: "setup", Description: "Post the Server Boosts sales panel", DefaultMemberPermissions: &adminPerm},
		{Name: "setup-bots", Description: "Post the Custom Bots sales panel", DefaultMemberPermissions: &adminPerm},
		{Name: "setup-nitro", Description: "Post the Nitro Tokens sales panel", DefaultMemberPermissions: &adminPerm},
		{Name: "setup-afk", Description: "Post the AFK Tool sales panel", DefaultMemberPermissions: &adminPerm},
		{Name: "setup-lobby", Description: "Post the Bot Lobby Tool sales panel", DefaultMemberPermissions: &adminPerm},
		{Name: "setup-designs", Description: "Post the Designs sales panel", DefaultMemberPermissions: &adminPerm},
		{
			Name: "setup-welcome", Description: "Configure the welcome system",
			DefaultMemberPermissions: &adminPerm,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel for welcome messages", Required: true},
			},
		},
		{
			Name: "embed", Description: "Send a custom or preset embed to a channel",
			DefaultMemberPermissions: &adminPerm,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel to send the embed in", Required: true},
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "preset", Description: "Use a predefined design",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Prices - Factory Boosts", Value: "precios"},
						{Name: "Custom Bots - Services", Value: "custombots"},
						{Name: "FAQs - Factory Boosts", Value: "faqs"},
						{Name: "Simple Announcement", Value: "anuncio"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Embed title"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "Embed description"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "color", Description: "Hex colour (e.g. #00D9A3)"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "image", Description: "Main image URL"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "thumbnail", Description: "Thumbnail URL"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "footer", Description: "Footer text"},
			},
		},
		{
			Name: "send-key", Description: "Deliver a product key to a user via DM",
			DefaultMemberPermissions: &adminPerm,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Customer to DM", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "key", Description: "Product key", Required: true},
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "language", Description: "Message language",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "English", Value: "en"},
						{Name: "Español", Value: "es"},
					},
				},
			},
		},
		{Name: "testwelcome", Description: "Preview the welcome message here", DefaultMemberPermissions: &adminPerm},
		{Name: "tickets", Description: "List all open tickets", DefaultMemberPermissions: &adminPerm},
	}
}

// Register attaches the gateway event handlers: interactions, member
// joins, and the plain-message trigger inside ticket channels.
func Register(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		routeInteraction(s, i)
	})
	s.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		handleMemberJoin(s, m)
	})
	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		handleTicketMessage(s, m)
	})
}

// routeInteraction maps one inbound event to exactly one handler
// invocation, exactly once. Duplicate deliveries are dropped, handler
// panics are contained here, and a best-effort failure notice goes back
// to the user.
func routeInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		return
	}
	if alreadyHandled(i.ID) {
		log.Printf("[Router] Duplicate interaction %s dropped", i.ID)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Router] Handler panic for interaction %s: %v", i.ID, r)
			respondFailure(s, i)
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		handleSlashCommand(s, i)
	case discordgo.InteractionMessageComponent:
		handleComponent(s, i)
	case discordgo.InteractionModalSubmit:
		handleModalSubmit(s, i)
	}
}

func handleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name

	// Every slash command on this bot is staff-only. One gate, one
	// uniform rejection.
	if !requireAdmin(s, i) {
		return
	}

	switch name {
	case "setup":
		handleSetupPanel(s, i, ticket.FamilyBoost)
	case "setup-bots":
		handleSetupPanel(s, i, ticket.FamilyBot)
	case "setup-nitro":
		handleSetupPanel(s, i, ticket.FamilyNitro)
	case "setup-afk":
		handleSetupPanel(s, i, ticket.FamilyAFK)
	case "setup-lobby":
		handleSetupPanel(s, i, ticket.FamilyLobby)
	case "setup-designs":
		handleSetupPanel(s, i, ticket.FamilyDesigns)
	case "setup-welcome":
		handleSetupWelcome(s, i)
	case "embed":
		handleEmbedCommand(s, i)
	case "send-key":
		handleSendKey(s, i)
	case "testwelcome":
		handleTestWelcome(s, i)
	case "tickets":
		handleTicketList(s, i)
	default:
		log.Printf("[Router] Unknown command: %s", name)
	}
}

func handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	switch customID {
	// Panel menus: the selection opens a ticket, pre-seeding the
	// package where the menu carries one.
	case "boost_panel_menu":
		handlePanelSelect(s, i, ticket.FamilyBoost)
	case "bot_panel_menu":
		handlePanelSelect(s, i, ticket.FamilyBot)
	case "nitro_panel_menu":
		handlePanelSelect(s, i, ticket.FamilyNitro)
	case "afk_service_menu":
		handleAFKServiceSelect(s, i)

	// Panel buttons for families without a package menu.
	case "create_ticket":
		handleCreateTicket(s, i, ticket.FamilyBoost, "")
	case "create_ticket_bot":
		handleCreateTicket(s, i, ticket.FamilyBot, "")
	case "create_ticket_nitro":
		handleCreateTicket(s, i, ticket.FamilyNitro, "")
	case "create_ticket_afk":
		handleCreateTicket(s, i, ticket.FamilyAFK, "")
	case "create_ticket_lobby":
		handleCreateTicket(s, i, ticket.FamilyLobby, "")
	case "create_ticket_support":
		handleCreateTicket(s, i, ticket.FamilySupport, "")
	case "create_ticket_report":
		handleCreateTicket(s, i, ticket.FamilyReport, "")
	case "create_ticket_promo":
		handleCreateTicket(s, i, ticket.FamilyPromo, "")
	case "create_ticket_designs":
		handleDesignOrderButton(s, i)

	// Package menus inside ticket channels.
	case "select_boost_package", "select_bot_package", "select_nitro_package", "select_afk_package":
		handlePackageSelect(s, i)

	// Close protocol.
	case "close_ticket":
		handleCloseRequest(s, i)
	case "close_confirm":
		handleCloseConfirm(s, i)
	case "close_cancel":
		handleCloseCancel(s, i)

	// Welcome message buttons.
	case "read_rules":
		handleReadRules(s, i)
	case "view_services":
		handleViewServices(s, i)
	case "contact_support":
		handleContactSupport(s, i)

	default:
		log.Printf("[Router] Unknown component: %s", customID)
	}
}

func handleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ModalSubmitData().CustomID {
	case "design_order_modal":
		handleDesignOrderSubmit(s, i)
	default:
		log.Printf("[Router] Unknown modal: %s", i.ModalSubmitData().CustomID)
	}
}

// Interaction dedupe: Discord may redeliver an event the bot already
// answered. Seen ids are kept briefly; interaction tokens themselves
// expire after 15 minutes.
const seenRetention = 15 * time.Minute

var (
	seenMu sync.Mutex
	seen   = make(map[string]time.Time)
)

func alreadyHandled(interactionID string) bool {
	seenMu.Lock()
	defer seenMu.Unlock()

	now := time.Now()
	for id, at := range seen {
		if now.Sub(at) > seenRetention {
			delete(seen, id)
		}
	}
	if _, ok := seen[interactionID]; ok {
		return true
	}
	seen[interactionID] = now
	return false
}

func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// requireAdmin gates admin-only actions with a uniform rejection.
func requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if isAdmin(i) {
		return true
	}
	respond(s, i, "❌ Only administrators can use this command.", true)
	return false
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		log.Printf("[Router] Failed to respond: %v", err)
	}
}

func respondEmbeds(s *discordgo.Session, i *discordgo.InteractionCreate, embeds []*discordgo.MessageEmbed, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: embeds,
			Flags:  flags,
		},
	})
	if err != nil {
		log.Printf("[Router] Failed to respond: %v", err)
	}
}

func editReply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
	if err != nil {
		log.Printf("[Router] Failed to edit reply: %v", err)
	}
}

// respondFailure sends the generic failure notice. If the interaction
// was already answered the initial respond fails and we edit instead;
// a failure of the fallback itself is only logged.
func respondFailure(s *discordgo.Session, i *discordgo.InteractionCreate) {
	const msg = "❌ Something went wrong while processing your request."
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err == nil {
		return
	}
	content := msg
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.Printf("[Router] Failed to deliver failure notice: %v", err)
	}
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for _, opt := range i.ApplicationCommandData().Options {
		m[opt.Name] = opt
	}
	return m
}

func optStr(m map[string]*discordgo.ApplicationCommandInteractionDataOption, key, def string) string {
	if o, ok := m[key]; ok {
		return o.StringValue()
	}
	return def
}

func userMention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}
