package handlers

import (
	"fmt"
	"log"
	"time"

	"ticket-bot/config"
	"ticket-bot/lang"

	"github.com/bwmarrin/discordgo"
)

// handleSendKey DMs a product key to a customer in the requested
// language.
func handleSendKey(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := optionMap(i)
	userOpt, ok := opts["user"]
	if !ok {
		respond(s, i, "❌ You must provide a user.", true)
		return
	}
	user := userOpt.UserValue(s)
	key := optStr(opts, "key", "")
	if user == nil || key == "" {
		respond(s, i, "❌ You must provide a user and a key.", true)
		return
	}

	language := optStr(opts, "language", "en")
	if !lang.Known(language) {
		language = "en"
	}

	dm, err := s.UserChannelCreate(user.ID)
	if err != nil {
		log.Printf("[Keys] Failed to open DM with %s: %v", user.ID, err)
		respond(s, i, "❌ Could not open a DM with that user.", true)
		return
	}

	embed := &discordgo.MessageEmbed{
		Color:       config.ParseColour(Cfg.Colors.Primary),
		Title:       "🔑 Key Delivery",
		Description: lang.T(language, "key_delivery", "key", key),
		Footer:      &discordgo.MessageEmbedFooter{Text: lang.T(language, "key_footer")},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if _, err := s.ChannelMessageSendEmbed(dm.ID, embed); err != nil {
		log.Printf("[Keys] Failed to deliver key to %s: %v", user.ID, err)
		respond(s, i, "❌ Could not deliver the key. The user may have DMs disabled.", true)
		return
	}

	respond(s, i, fmt.Sprintf("✅ Key delivered to %s via DM.", userMention(user.ID)), true)
}
