// Package notify delivers staff-facing order notifications: an embed
// in the staff log channel, and optionally a JSON order event published
// to an AMQP queue for external order tooling.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ticket-bot/config"
	"ticket-bot/ticket"

	"github.com/bwmarrin/discordgo"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Notifier struct {
	session    *discordgo.Session
	logChannel string
	warning    int

	amqpQueue string
	amqpChan  *amqp.Channel
	amqpConn  *amqp.Connection
}

// New wires the notifier. An empty log channel disables embeds, an
// empty AMQP URL disables the queue; both failing open keeps the
// ticket flow itself unaffected.
func New(session *discordgo.Session, cfg *config.Config) *Notifier {
	n := &Notifier{
		session:    session,
		logChannel: cfg.Tickets.LogChannel,
		warning:    config.ParseColour(cfg.Colors.Warning),
	}

	if cfg.Notify.AMQP.URL != "" {
		if err := n.connectAMQP(cfg.Notify.AMQP); err != nil {
			log.Printf("[Notify] AMQP disabled: %v", err)
		} else {
			log.Printf("[Notify] AMQP connected (queue %s)", cfg.Notify.AMQP.Queue)
		}
	}
	return n
}

func (n *Notifier) connectAMQP(cfg config.AMQPConfig) error {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("channel: %w", err)
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "ticket-orders"
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare queue: %w", err)
	}
	n.amqpConn = conn
	n.amqpChan = ch
	n.amqpQueue = queue
	return nil
}

func (n *Notifier) Close() {
	if n.amqpChan != nil {
		_ = n.amqpChan.Close()
	}
	if n.amqpConn != nil {
		_ = n.amqpConn.Close()
	}
}

// orderEvent is the queue payload for a package selection.
type orderEvent struct {
	TicketID  int    `json:"ticket_id"`
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Family    string `json:"family"`
	Package   string `json:"package"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity,omitempty"`
	Duration  string `json:"duration,omitempty"`
	At        string `json:"at"`
}

func newOrderEvent(t *ticket.Ticket, opt *ticket.Option, at time.Time) orderEvent {
	return orderEvent{
		TicketID:  t.ID,
		ChannelID: t.ChannelID,
		UserID:    t.UserID,
		Username:  t.Username,
		Family:    string(t.Family),
		Package:   opt.Label,
		Price:     opt.Price,
		Quantity:  opt.Quantity,
		Duration:  opt.Duration,
		At:        at.UTC().Format(time.RFC3339),
	}
}

// OrderSelected announces a package selection to staff. Failures are
// logged and swallowed: notifications never fail the customer flow.
func (n *Notifier) OrderSelected(t *ticket.Ticket, opt *ticket.Option) {
	n.sendOrderEmbed(t, opt)
	n.publishOrder(t, opt)
}

func (n *Notifier) sendOrderEmbed(t *ticket.Ticket, opt *ticket.Option) {
	if n.logChannel == "" {
		return
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "👤 User", Value: fmt.Sprintf("<@%s> (%s)", t.UserID, t.Username), Inline: true},
		{Name: "📦 Package", Value: opt.Label, Inline: true},
		{Name: "💰 Price", Value: opt.Price, Inline: true},
	}
	if opt.Quantity > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "🔢 Quantity", Value: fmt.Sprintf("%d", opt.Quantity), Inline: true})
	}
	if opt.Duration != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "⏰ Duration", Value: opt.Duration, Inline: true})
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "🎫 Ticket Channel", Value: fmt.Sprintf("<#%s>", t.ChannelID), Inline: false})

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔔 New %s Request", t.Family.Info().Display),
		Description: "A customer has selected a package",
		Color:       n.warning,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Ticket #%d • User ID: %s", t.ID, t.UserID)},
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	if _, err := n.session.ChannelMessageSendEmbed(n.logChannel, embed); err != nil {
		log.Printf("[Notify] Failed to send staff notification: %v", err)
	}
}

func (n *Notifier) publishOrder(t *ticket.Ticket, opt *ticket.Option) {
	if n.amqpChan == nil {
		return
	}

	body, err := json.Marshal(newOrderEvent(t, opt, time.Now()))
	if err != nil {
		log.Printf("[Notify] Failed to encode order event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = n.amqpChan.PublishWithContext(ctx, "", n.amqpQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.Printf("[Notify] Failed to publish order event: %v", err)
	}
}
