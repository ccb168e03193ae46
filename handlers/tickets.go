package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"ticket-bot/config"
	"ticket-bot/lang"
	"ticket-bot/ticket"

	"github.com/bwmarrin/discordgo"
)

// SessionPlatform adapts the discordgo session to the lifecycle
// manager's channel-operation contract.
type SessionPlatform struct {
	Session *discordgo.Session
	Cfg     *config.Config
}

func (p *SessionPlatform) CreateChannel(name string, family ticket.Family, userID string) (string, error) {
	guildID := p.Cfg.Discord.GuildID

	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{
			ID:    userID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionAttachFiles | discordgo.PermissionReadMessageHistory,
		},
	}
	if p.Session.State != nil && p.Session.State.User != nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    p.Session.State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionManageChannels,
		})
	}
	for _, roleID := range p.Cfg.Tickets.StaffRoles {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionAttachFiles | discordgo.PermissionReadMessageHistory | discordgo.PermissionManageMessages,
		})
	}

	ch, err := p.Session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             p.Cfg.CategoryFor(family),
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (p *SessionPlatform) RenameChannel(channelID, name string) error {
	_, err := p.Session.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name})
	return err
}

func (p *SessionPlatform) DeleteChannel(channelID string) error {
	_, err := p.Session.ChannelDelete(channelID)
	return err
}

// handlePanelSelect handles the sales-panel menus whose values are
// catalog option keys: the ticket opens with the package pre-selected.
func handlePanelSelect(s *discordgo.Session, i *discordgo.InteractionCreate, family ticket.Family) {
	data := i.MessageComponentData()
	if len(data.Values) == 0 {
		return
	}
	handleCreateTicket(s, i, family, data.Values[0])
}

// handleAFKServiceSelect routes the AFK panel menu, whose values pick a
// family (AFK Tool vs HWID Reset) rather than a package.
func handleAFKServiceSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	if len(data.Values) == 0 {
		return
	}
	switch data.Values[0] {
	case "afk_tool":
		handleCreateTicket(s, i, ticket.FamilyAFK, "")
	case "hwid_reset":
		handleCreateTicket(s, i, ticket.FamilyHWID, "")
	default:
		respond(s, i, "❌ Invalid option.", true)
	}
}

func handleCreateTicket(s *discordgo.Session, i *discordgo.InteractionCreate, family ticket.Family, selected string) {
	openTicketFor(s, i, family, selected, ticket.Details{})
}

// openTicketFor acknowledges immediately (channel creation can exceed
// the interaction deadline) and then drives the lifecycle manager.
func openTicketFor(s *discordgo.Session, i *discordgo.InteractionCreate, family ticket.Family, selected string, initial ticket.Details) {
	respond(s, i, "⏳ Creating your ticket...", true)

	user := i.Member.User
	t, err := Manager.OpenTicket(user.ID, user.Username, family, selected, initial)
	if err != nil {
		var dup *ticket.DuplicateOpenTicketError
		if errors.As(err, &dup) {
			if dup.ChannelID != "" {
				editReply(s, i, fmt.Sprintf("❌ You already have an open ticket: <#%s>", dup.ChannelID))
			} else {
				editReply(s, i, "❌ You already have an open ticket for this service.")
			}
			return
		}
		log.Printf("[Tickets] Failed to open %s ticket for %s: %v", family, user.ID, err)
		editReply(s, i, "❌ There was an error creating your ticket. Please contact an administrator.")
		return
	}

	sendTicketWelcome(s, t)
	sendAssistantGreeting(s, t.ChannelID)
	editReply(s, i, fmt.Sprintf("✅ Your ticket has been created: <#%s>", t.ChannelID))
}

// sendTicketWelcome posts the in-ticket welcome embed, the package menu
// when the family has one and nothing was pre-selected, and the close
// button.
func sendTicketWelcome(s *discordgo.Session, t *ticket.Ticket) {
	info := t.Family.Info()
	embed := &discordgo.MessageEmbed{
		Color:     info.Color,
		Title:     fmt.Sprintf("🎫 Ticket Created - %s", info.Display),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	var components []discordgo.MessageComponent

	switch {
	case t.Details.Package != "":
		embed.Description = fmt.Sprintf(
			"Hello %s! Thank you for creating a ticket.\n\n**Selected Package:** %s\n\n**Price:** %s\n\nA staff member will assist you shortly with your purchase.",
			userMention(t.UserID), t.Details.Package, t.Details.Price,
		)
	case info.HasMenu:
		embed.Description = fmt.Sprintf(
			"Hello %s! Thank you for creating a ticket.\n\n**Please select the package you want below:**",
			userMention(t.UserID),
		)
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{packageMenu(t.Family)},
		})
	default:
		embed.Description = fmt.Sprintf(
			"Hello %s! Thank you for creating a ticket.\n\nA staff member will assist you shortly.",
			userMention(t.UserID),
		)
	}

	components = append(components, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label: "🔒 Close Ticket", Style: discordgo.DangerButton,
				CustomID: "close_ticket",
			},
		},
	})

	_, err := s.ChannelMessageSendComplex(t.ChannelID, &discordgo.MessageSend{
		Content:    userMention(t.UserID),
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		log.Printf("[Tickets] Failed to send welcome message to %s: %v", t.ChannelID, err)
	}
}

func packageMenu(family ticket.Family) discordgo.SelectMenu {
	return panelMenu(fmt.Sprintf("select_%s_package", family), "Select a package...", family)
}

func sendAssistantGreeting(s *discordgo.Session, channelID string) {
	embed := &discordgo.MessageEmbed{
		Color: config.ParseColour(Cfg.Colors.Primary),
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Factory Bot Assistant",
		},
		Description: "👋 **Hello! Thank you for opening a ticket.**\n\nI'm here to help you get started. Our team will assist you shortly.\n\n💡 **Need immediate human support?**\nSimply type `human` and a staff member will be notified right away.",
		Footer:      &discordgo.MessageEmbedFooter{Text: "🤖 Automated Assistant • Factory Boosts"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if s.State != nil && s.State.User != nil {
		embed.Author.IconURL = s.State.User.AvatarURL("64")
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("[Tickets] Failed to send assistant greeting: %v", err)
	}
}

// handlePackageSelect handles the in-ticket package menus for every
// family; the ticket's own family decides which catalog set applies.
func handlePackageSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	if len(data.Values) == 0 {
		return
	}

	t, opt, err := Manager.SelectPackage(i.ChannelID, data.Values[0])
	switch {
	case errors.Is(err, ticket.ErrNotFound):
		respond(s, i, "❌ This is not a ticket channel.", true)
		return
	case errors.Is(err, ticket.ErrInvalidOption):
		respond(s, i, "❌ Invalid option.", true)
		return
	case err != nil:
		log.Printf("[Tickets] Package selection failed in %s: %v", i.ChannelID, err)
		respondFailure(s, i)
		return
	}

	info := t.Family.Info()
	ticketInfo := &discordgo.MessageEmbed{
		Color: info.Color,
		Description: fmt.Sprintf("🎫 **Ticket ID:** `%d`\n👤 **Ticket Owner:** `%s`\n⚠️ **Reminder:** `Do not ping staff repeatedly`",
			t.ID, t.Username),
		Footer: &discordgo.MessageEmbedFooter{Text: "Tickets • Factory Boosts"},
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n\n💰 **Price:** %s\n", opt.Label, opt.Price)
	if opt.Quantity > 0 {
		fmt.Fprintf(&sb, "📦 **Quantity:** %d\n", opt.Quantity)
	}
	if opt.Duration != "" {
		fmt.Fprintf(&sb, "⏰ **Duration:** %s\n", opt.Duration)
	}
	sb.WriteString("\n📝 A staff member will process your order soon.")

	packageEmbed := &discordgo.MessageEmbed{
		Color:       info.Color,
		Title:       "✅ Package Selected",
		Description: sb.String(),
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	respondEmbeds(s, i, []*discordgo.MessageEmbed{ticketInfo, packageEmbed}, false)
	Notifier.OrderSelected(t, opt)
}

// handleCloseRequest starts the two-step close protocol: admin gate,
// then an ephemeral confirm/cancel prompt. Nothing is persisted until
// the confirmation.
func handleCloseRequest(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_, err := Manager.RequestClose(i.ChannelID, isAdmin(i))
	switch {
	case errors.Is(err, ticket.ErrPermissionDenied):
		respond(s, i, "❌ Only administrators can close tickets.", true)
		return
	case errors.Is(err, ticket.ErrNotFound):
		respond(s, i, "❌ This is not a ticket channel.", true)
		return
	case err != nil:
		log.Printf("[Tickets] Close request failed in %s: %v", i.ChannelID, err)
		respondFailure(s, i)
		return
	}

	confirmEmbed := &discordgo.MessageEmbed{
		Color:       config.ParseColour(Cfg.Colors.Warning),
		Title:       "⚠️ Confirm Ticket Close",
		Description: "Are you sure you want to close this ticket?\n\nThis action cannot be undone.",
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{confirmEmbed},
			Flags:  discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{Label: "✅ Yes, close", Style: discordgo.DangerButton, CustomID: "close_confirm"},
						discordgo.Button{Label: "❌ Cancel", Style: discordgo.SecondaryButton, CustomID: "close_cancel"},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("[Tickets] Failed to send close confirmation: %v", err)
	}
}

func handleCloseConfirm(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if _, err := Manager.RequestClose(i.ChannelID, isAdmin(i)); err != nil {
		if errors.Is(err, ticket.ErrPermissionDenied) {
			respond(s, i, "❌ Only administrators can close tickets.", true)
			return
		}
		respond(s, i, "❌ Ticket not found.", true)
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{Content: "🔒 Closing ticket...", Embeds: []*discordgo.MessageEmbed{}, Components: []discordgo.MessageComponent{}},
	})
	if err != nil {
		log.Printf("[Tickets] Failed to ack close confirm: %v", err)
	}

	t, err := Manager.FinalizeClose(i.ChannelID)
	if err != nil {
		log.Printf("[Tickets] Failed to finalize close in %s: %v", i.ChannelID, err)
		return
	}

	seconds := strconv.Itoa(Cfg.Tickets.GraceDelaySeconds)
	farewell := &discordgo.MessageEmbed{
		Color:       config.ParseColour(Cfg.Colors.Primary),
		Title:       "🔒 Ticket Closed",
		Description: fmt.Sprintf("Ticket closed by %s\n\n%s", userMention(i.Member.User.ID), lang.T("en", "ticket_closed", "seconds", seconds)),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if _, err := s.ChannelMessageSendEmbed(t.ChannelID, farewell); err != nil {
		log.Printf("[Tickets] Failed to send farewell message: %v", err)
	}
}

func handleCloseCancel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{Content: "❌ Ticket close cancelled.", Embeds: []*discordgo.MessageEmbed{}, Components: []discordgo.MessageComponent{}},
	})
	if err != nil {
		log.Printf("[Tickets] Failed to ack close cancel: %v", err)
	}
}

// handleTicketMessage watches ticket channels for the literal `human`
// trigger and pings the staff roles.
func handleTicketMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if strings.ToLower(strings.TrimSpace(m.Content)) != "human" {
		return
	}
	t, err := Manager.Lookup(m.ChannelID)
	if err != nil || t.Status != ticket.StatusOpen {
		return
	}

	mentions := make([]string, 0, len(Cfg.Tickets.StaffRoles))
	for _, roleID := range Cfg.Tickets.StaffRoles {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
	}
	mentionText := "@Staff"
	if len(mentions) > 0 {
		mentionText = strings.Join(mentions, " ")
	}

	embed := &discordgo.MessageEmbed{
		Color: 0xFF6B6B,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    "Human Support Requested",
			IconURL: m.Author.AvatarURL("64"),
		},
		Description: fmt.Sprintf("🚨 **%s has requested human support.**\n\n%s - Please assist this customer.", userMention(m.Author.ID), mentionText),
		Footer:      &discordgo.MessageEmbedFooter{Text: "⚡ Priority Support Request"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content: mentionText,
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.Printf("[Tickets] Failed to send human-support notification: %v", err)
		return
	}
	_, _ = s.ChannelMessageSendReply(m.ChannelID,
		"✅ **A staff member has been notified and will assist you shortly!**", m.Reference())
}

func handleTicketList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	all, err := Manager.Tickets()
	if err != nil {
		log.Printf("[Tickets] Failed to list tickets: %v", err)
		respondFailure(s, i)
		return
	}

	var open []ticket.Ticket
	for _, t := range all {
		if t.Status == ticket.StatusOpen {
			open = append(open, t)
		}
	}
	if len(open) == 0 {
		respond(s, i, "No open tickets.", true)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Open Tickets** (%d):\n", len(open))
	for _, t := range open {
		pkg := t.Details.Package
		if pkg == "" {
			pkg = "—"
		}
		fmt.Fprintf(&sb, "• <#%s> — #%d by %s [%s / %s]\n", t.ChannelID, t.ID, userMention(t.UserID), t.Family, pkg)
	}
	respond(s, i, sb.String(), true)
}

// handleDesignOrderButton opens the design brief modal; the ticket is
// created on submit so the brief lands in the fresh ticket's details.
func handleDesignOrderButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "design_order_modal",
			Title:    "Design Order",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "project",
							Label:       "What do you need designed?",
							Style:       discordgo.TextInputParagraph,
							Placeholder: "Logo, banner, full branding...",
							Required:    true,
							MaxLength:   500,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "budget",
							Label:       "Your budget",
							Style:       discordgo.TextInputShort,
							Placeholder: "e.g. 25$",
							Required:    false,
							MaxLength:   50,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("[Tickets] Failed to open design modal: %v", err)
	}
}

func handleDesignOrderSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	form := make(map[string]string)
	for _, row := range i.ModalSubmitData().Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			if input, ok := c.(*discordgo.TextInput); ok && input.Value != "" {
				form[input.CustomID] = input.Value
			}
		}
	}
	openTicketFor(s, i, ticket.FamilyDesigns, "", ticket.Details{Form: form})
}
