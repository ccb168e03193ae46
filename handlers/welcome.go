package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"ticket-bot/config"
	"ticket-bot/ticket"

	"github.com/bwmarrin/discordgo"
)

// handleMemberJoin posts the welcome message for new members when the
// welcome system is enabled and a channel is configured.
func handleMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if !Cfg.Welcome.Enabled {
		return
	}
	if Cfg.Welcome.ChannelID == "" {
		log.Printf("[Welcome] Welcome channel not configured")
		return
	}
	if m.User == nil || m.User.Bot {
		return
	}

	msg := welcomeMessage(s, m.User, m.GuildID)
	if _, err := s.ChannelMessageSendComplex(Cfg.Welcome.ChannelID, msg); err != nil {
		log.Printf("[Welcome] Failed to send welcome message for %s: %v", m.User.Username, err)
		return
	}
	log.Printf("[Welcome] Welcome message sent for %s", m.User.Username)
}

// handleTestWelcome previews the welcome message in the current channel
// using the invoking user as the new member.
func handleTestWelcome(s *discordgo.Session, i *discordgo.InteractionCreate) {
	msg := welcomeMessage(s, i.Member.User, i.GuildID)
	if _, err := s.ChannelMessageSendComplex(i.ChannelID, msg); err != nil {
		log.Printf("[Welcome] Failed to send test welcome: %v", err)
		respond(s, i, "❌ Failed to send the welcome preview.", true)
		return
	}
	respond(s, i, "✅ Welcome preview sent.", true)
}

// handleSetupWelcome points the welcome system at a channel and
// persists the change.
func handleSetupWelcome(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	channelOpt, ok := opts["channel"]
	if !ok {
		respond(s, i, "❌ You must provide a channel.", true)
		return
	}
	channel := channelOpt.ChannelValue(s)
	if channel == nil {
		respond(s, i, "❌ Channel not found.", true)
		return
	}

	Cfg.Welcome.Enabled = true
	Cfg.Welcome.ChannelID = channel.ID
	if err := config.SaveConfig(Cfg, ConfigPath); err != nil {
		log.Printf("[Welcome] Failed to save config: %v", err)
		respond(s, i, "❌ The channel was set but saving the config failed.", true)
		return
	}
	respond(s, i, fmt.Sprintf("✅ Welcome messages will be sent to <#%s>.", channel.ID), true)
}

func welcomeMessage(s *discordgo.Session, user *discordgo.User, guildID string) *discordgo.MessageSend {
	w := Cfg.Welcome

	embed := &discordgo.MessageEmbed{
		Color: config.ParseColour(w.Colour),
		Author: &discordgo.MessageEmbedAuthor{
			Name:    fmt.Sprintf("%s just joined the server!", user.Username),
			IconURL: user.AvatarURL("128"),
		},
		Title:       strings.ReplaceAll(w.Title, "{user}", user.Username),
		Description: strings.ReplaceAll(w.Description, "{user}", userMention(user.ID)),
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("256")},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "👤 User Information",
				Value:  fmt.Sprintf("**Username:** %s\n**ID:** `%s`\n**Mention:** %s", user.Username, user.ID, userMention(user.ID)),
				Inline: true,
			},
			{
				Name: "🎁 Getting Started",
				Value: "```fix\n1. Read our rules and terms of service\n2. Introduce yourself in the intro channel\n3. Check out our services channels\n4. Create a ticket to make a purchase\n5. Enjoy premium Discord services!\n```",
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if w.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: w.Image}
	}
	if w.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: w.Footer}
	}
	if guild, err := s.State.Guild(guildID); err == nil && guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guild.IconURL("256")}
	}

	buttons := []discordgo.MessageComponent{
		discordgo.Button{Label: "📜 Rules", Style: discordgo.SecondaryButton, CustomID: "read_rules"},
		discordgo.Button{Label: "🛒 Services", Style: discordgo.SecondaryButton, CustomID: "view_services"},
		discordgo.Button{Label: "📞 Support", Style: discordgo.PrimaryButton, CustomID: "contact_support"},
	}
	if w.WebsiteButton && w.WebsiteURL != "" {
		buttons = append(buttons, discordgo.Button{Label: "🌐 Website", Style: discordgo.LinkButton, URL: w.WebsiteURL})
	}

	return &discordgo.MessageSend{
		Content:    fmt.Sprintf("🎉 **Welcome %s to Factory Boosts!** We're glad to have you here! 🌟", userMention(user.ID)),
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}},
	}
}

func handleReadRules(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respond(s, i, "📜 Please read the rules channel before participating. Breaking the rules may result in losing access to our services.", true)
}

func handleViewServices(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var sb strings.Builder
	sb.WriteString("🛒 **Our Services:**\n")
	for _, f := range ticket.Families() {
		sb.WriteString(fmt.Sprintf("• %s\n", f.Info().Display))
	}
	sb.WriteString("\nHead to the tickets channels and open a ticket to place an order.")
	respond(s, i, sb.String(), true)
}

// handleContactSupport opens a general support ticket straight from the
// welcome message.
func handleContactSupport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	handleCreateTicket(s, i, ticket.FamilySupport, "")
}
