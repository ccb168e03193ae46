package handlers

import (
	"fmt"
	"log"
	"time"

	"ticket-bot/config"
	"ticket-bot/ticket"

	"github.com/bwmarrin/discordgo"
)

// handleSetupPanel posts the sales panel for the family into the
// channel the command was issued in.
func handleSetupPanel(s *discordgo.Session, i *discordgo.InteractionCreate, family ticket.Family) {
	msg := panelMessage(family)
	if msg == nil {
		respond(s, i, "❌ No panel exists for this service.", true)
		return
	}
	if _, err := s.ChannelMessageSendComplex(i.ChannelID, msg); err != nil {
		log.Printf("[Panels] Failed to post %s panel: %v", family, err)
		respond(s, i, "❌ Failed to post the panel here.", true)
		return
	}
	respond(s, i, fmt.Sprintf("✅ %s panel posted.", family.Info().Display), true)
}

func panelMessage(family ticket.Family) *discordgo.MessageSend {
	switch family {
	case ticket.FamilyBoost:
		return boostPanel()
	case ticket.FamilyBot:
		return botsPanel()
	case ticket.FamilyNitro:
		return nitroPanel()
	case ticket.FamilyAFK:
		return afkPanel()
	case ticket.FamilyLobby:
		return lobbyPanel()
	case ticket.FamilyDesigns:
		return designsPanel()
	}
	return nil
}

func boostPanel() *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Color:       0x00D9A3,
		Title:       "Server Boosts",
		Description: "**Boost your Discord server with our reliable service.**\n\nChoose from 1 Month or 3 Month durations.\nPackages available: 6, 8, or 14 boosts.\n\nPrices starting at $5 for 1 month.\nSelect your package below to create a ticket.",
		Image:       &discordgo.MessageEmbedImage{URL: "https://cdn.discordapp.com/attachments/1309783318031503384/1447815600905916538/NITRO_BOOSTS.gif"},
		Footer:      &discordgo.MessageEmbedFooter{Text: "👑 Factory Boosts • Trusted Service"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				panelMenu("boost_panel_menu", "Select a Server Boost package", ticket.FamilyBoost),
			}},
		},
	}
}

func botsPanel() *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Color:       0x00D9A3,
		Title:       "Custom Discord Bots",
		Description: "**Professional bot development tailored to your needs.**\n\nWe create custom bots with any features you want.\nFrom simple moderation to complex systems.\n\nPrices start at $15 for basic bots.\nSelect the type that fits your project below.",
		Image:       &discordgo.MessageEmbedImage{URL: "https://cdn.discordapp.com/attachments/1309783318031503384/1447815599957872793/CUSTOM_BOTS.gif"},
		Footer:      &discordgo.MessageEmbedFooter{Text: "🤖 Factory Development • Quality Custom Bots"},
	}
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				panelMenu("bot_panel_menu", "Select bot type", ticket.FamilyBot),
			}},
		},
	}
}

func nitroPanel() *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Color:       0x5865F2,
		Title:       "Discord Nitro Tokens",
		Description: "**Get Discord Nitro at affordable prices.**\n\nReceive your token instantly after payment.\nWorks with any Discord account.\n\n1 Month - $1.50\n3 Months - $4.00\n\nSelect your duration below to get started.",
		Image:       &discordgo.MessageEmbedImage{URL: "https://cdn.discordapp.com/attachments/1309783318031503384/1447815600461316106/NITRO_TOKENS.gif"},
		Footer:      &discordgo.MessageEmbedFooter{Text: "💎 Factory Boosts • Instant Delivery"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				panelMenu("nitro_panel_menu", "Select Nitro duration", ticket.FamilyNitro),
			}},
		},
	}
}

// afkPanel's menu selects a service family (AFK Tool vs HWID Reset),
// not a package; packages are chosen inside the ticket.
func afkPanel() *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Color:       0x00D9A3,
		Title:       "AFK Tool - Game Farming",
		Description: "**Automated game farming made easy.**\n\nSafe, undetectable, and fast rank progression.\n24/7 support included.\n\nSubscriptions: 7 days ($5) to Lifetime ($50)\nHWID Reset service also available.\n\nSelect a service below to get started.",
		Image:       &discordgo.MessageEmbedImage{URL: "https://cdn.discordapp.com/attachments/1309783318031503384/1447989195451797646/AFK_TOOL.gif"},
		Footer:      &discordgo.MessageEmbedFooter{Text: "🎮 Factory Tools • Professional AFK Service"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    "afk_service_menu",
					Placeholder: "Select a service",
					Options: []discordgo.SelectMenuOption{
						{Label: "🎮 AFK Tool", Description: "Purchase AFK Tool farming service", Value: "afk_tool"},
						{Label: "🔄 HWID Reset", Description: "Reset your Hardware ID", Value: "hwid_reset"},
					},
				},
			}},
		},
	}
}

func lobbyPanel() *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Color:       0x9B59B6,
		Title:       "Bot Lobby Tool",
		Description: "**Professional lobby management system for your game.**\n\nAutomated lobby creation and smart player management.\nMulti-platform support with 24/7 uptime guarantee.\n\nEnterprise-grade security and instant setup.\nDedicated priority support included.\n\nClick below to create a ticket and get started.",
		Image:       &discordgo.MessageEmbedImage{URL: "https://cdn.discordapp.com/attachments/1309783318031503384/1448176145768910909/FACTORY_BANNER_VERDE.gif"},
		Footer:      &discordgo.MessageEmbedFooter{Text: "🎯 Factory Tools • Premium Lobby Solutions"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "🎯 Purchase Bot Lobby Tool", Style: discordgo.SuccessButton, CustomID: "create_ticket_lobby"},
			}},
		},
	}
}

func designsPanel() *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Color:       0xE91E63,
		Title:       "Graphic Designs",
		Description: "**Custom graphics for your server and brand.**\n\nLogos, banners, GIFs and full branding packs.\nTell us what you need and get a quote.\n\nClick below and fill in your order details.",
		Footer:      &discordgo.MessageEmbedFooter{Text: "🎨 Factory Designs • Custom Graphics"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "🎨 Order a Design", Style: discordgo.SuccessButton, CustomID: "create_ticket_designs"},
			}},
		},
	}
}

func panelMenu(customID, placeholder string, family ticket.Family) discordgo.SelectMenu {
	opts := Cfg.TicketCatalog()[family]
	menuOpts := make([]discordgo.SelectMenuOption, 0, len(opts))
	for _, o := range opts {
		menuOpts = append(menuOpts, discordgo.SelectMenuOption{
			Label:       o.Label,
			Value:       o.Value,
			Description: o.Description,
		})
	}
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID,
		Placeholder: placeholder,
		Options:     menuOpts,
	}
}

// handleEmbedCommand sends a preset or hand-built embed into the chosen
// channel. The anuncio preset and the no-preset path share the custom
// field handling.
func handleEmbedCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	var embed *discordgo.MessageEmbed
	switch optStr(opts, "preset", "") {
	case "precios":
		embed = pricesEmbed()
	case "custombots":
		embed = customBotsEmbed()
	case "faqs":
		embed = faqsEmbed()
	default:
		embed = customEmbed(opts)
		if embed == nil {
			respond(s, i, "❌ You must provide at least a title or description, or use a preset.", true)
			return
		}
	}

	if _, err := s.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		log.Printf("[Panels] Failed to send embed to %s: %v", channel.ID, err)
		respond(s, i, "❌ There was an error sending the embed. Check that the image URLs are valid.", true)
		return
	}
	respond(s, i, fmt.Sprintf("✅ Embed sent to <#%s>", channel.ID), true)
}

func customEmbed(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) *discordgo.MessageEmbed {
	title := optStr(opts, "title", "")
	description := optStr(opts, "description", "")
	if title == "" && description == "" {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       config.ParseColour(optStr(opts, "color", Cfg.Colors.Primary)),
		Footer:      &discordgo.MessageEmbedFooter{Text: optStr(opts, "footer", "Factory Boosts")},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if url := optStr(opts, "image", ""); url != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: url}
	}
	if url := optStr(opts, "thumbnail", ""); url != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: url}
	}
	return embed
}

func pricesEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       0x00D9A3,
		Title:       "FACTORY BOOSTS - SERVER BOOSTS",
		Description: "━━━━━━━━━━━━━━━━━━━━━━━━━",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "🟢 1 MONTH SERVER BOOSTS",
				Value: "```fix\n• 6 Server Boosts  → 5$\n• 8 Server Boosts  → 7$\n• 14 Server Boosts → 11$\n```",
			},
			{
				Name:  "🔵 3 MONTH SERVER BOOSTS",
				Value: "```fix\n• 6 Server Boosts  → 15$\n• 8 Server Boosts  → 20$\n• 14 Server Boosts → 35$\n```",
			},
		},
		Image:  &discordgo.MessageEmbedImage{URL: "https://cdn.discordapp.com/attachments/1309783318031503384/1447815600905916538/NITRO_BOOSTS.gif"},
		Footer: &discordgo.MessageEmbedFooter{Text: "👑 Factory Boosts • Trusted Service"},
	}
}

func customBotsEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       0x00D9A3,
		Title:       "🤖 CUSTOM DISCORD BOTS",
		Description: "━━━━━━━━━━━━━━━━━━━━━━━━━",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "📋 ABOUT",
				Value: "```\nProfessional Discord Bot Development\nWe create custom bots tailored to your\nserver needs! Any feature, any\nfunctionality, fully customized.\n```",
			},
			{
				Name:  "💰 PRICING",
				Value: "```fix\n• Basic Bot      → Starting at 15$\n• Advanced Bot   → Starting at 30$\n• Premium Bot    → Starting at 50$\n• Custom Quote   → Contact us\n```",
			},
			{
				Name:  "📦 WHAT'S INCLUDED",
				Value: "```fix\n• Basic    → Simple commands & moderation\n• Advanced → Multiple systems & economy\n• Premium  → Full customization & features\n• Custom   → Unique & complex projects\n```",
			},
		},
		Image:  &discordgo.MessageEmbedImage{URL: "https://cdn.discordapp.com/attachments/1309783318031503384/1447815599957872793/CUSTOM_BOTS.gif"},
		Footer: &discordgo.MessageEmbedFooter{Text: "🤖 Factory Development • Quality Custom Bots"},
	}
}

func faqsEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       0x00D9A3,
		Title:       "❓ FREQUENTLY ASKED QUESTIONS",
		Description: "**Everything you need to know about Factory Boosts**",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "🚀 What are Server Boosts?",
				Value: "Server Boosts unlock premium features for your Discord server:\n```\n• Better audio quality\n• Custom server banner\n• More emoji slots\n• Increased upload limit\n```",
			},
			{
				Name:  "⏱️ How long do boosts last?",
				Value: "We offer boosts in **1 month** and **3 months** duration.\nThe boost timer starts immediately after activation.",
			},
			{
				Name:  "💳 What payment methods do you accept?",
				Value: "We accept **PayPal** and **Binance** (crypto).\nAll payments are secure and processed instantly.",
			},
			{
				Name:  "📦 How do I receive my boosts?",
				Value: "**After payment confirmation:**\n```\n1. You provide your server invite\n2. Our team activates the boosts\n3. Delivery time: 5-15 minutes\n```",
			},
			{
				Name:  "🔒 Are the boosts safe?",
				Value: "Yes! All our boosts are **100% legitimate** and comply with Discord Terms of Service.\nYour server is completely safe.",
			},
			{
				Name:  "🔄 What if a boost drops?",
				Value: "If any boost drops during the purchased period, we will **replace it for free** within 24 hours.\nWe guarantee full coverage.",
			},
			{
				Name:  "💬 How do I place an order?",
				Value: "Simply click the **\"Start Purchase\"** button in our tickets channel, select your package, and our staff will assist you immediately.",
			},
			{
				Name:  "🎫 Need more help?",
				Value: "Create a ticket and our support team will answer all your questions!",
			},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "👑 Factory Boosts • Your Trusted Boosting Service"},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
