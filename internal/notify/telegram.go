// Package notify forwards ticket events to people.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/example/helpdesk/internal/mq"
)

// Sender delivers a text message.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// TelegramSender messages a single chat, typically the helpdesk admin.
type TelegramSender struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramSender authorizes the bot token against the Telegram API.
func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "create telegram bot")
	}
	return &TelegramSender{bot: bot, chatID: chatID}, nil
}

// Send posts text to the configured chat.
func (s *TelegramSender) Send(_ context.Context, text string) error {
	_, err := s.bot.Send(tgbotapi.NewMessage(s.chatID, text))
	return errors.WithStack(err)
}

// FormatEvent renders an event as a one-line chat message.
func FormatEvent(e mq.TicketEvent) string {
	status := e.Status
	if status == "" {
		status = "new"
	}
	switch e.Event {
	case mq.EventTicketCreated:
		return fmt.Sprintf("New ticket #%d from user %d: %s (priority %s)", e.TicketID, e.UserID, e.Title, e.Priority)
	case mq.EventTicketStatusChanged:
		return fmt.Sprintf("Ticket #%d %q is now %s", e.TicketID, e.Title, status)
	default:
		return fmt.Sprintf("Ticket #%d: %s", e.TicketID, e.Event)
	}
}
