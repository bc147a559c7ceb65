package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender delivers notifications through a Telegram bot. The chat
// target may be a numeric chat ID or a public @channel username.
type TelegramSender struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	channel string
}

// NewTelegramSender creates a TelegramSender for the given bot token and
// chat target.
func NewTelegramSender(token, chat string) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify: telegram bot: %w", err)
	}

	s := &TelegramSender{bot: bot}
	if strings.HasPrefix(chat, "@") {
		s.channel = chat
	} else {
		id, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("notify: invalid telegram chat id %q: %w", chat, err)
		}
		s.chatID = id
	}
	return s, nil
}

// Send implements Sender.
func (s *TelegramSender) Send(ctx context.Context, title, message string) error {
	text := fmt.Sprintf("*%s*\n%s", title, message)

	var msg tgbotapi.MessageConfig
	if s.channel != "" {
		msg = tgbotapi.NewMessageToChannel(s.channel, text)
	} else {
		msg = tgbotapi.NewMessage(s.chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeMarkdown

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("notify: telegram send: %w", err)
	}
	return nil
}

// Name implements Sender.
func (s *TelegramSender) Name() string { return "telegram" }
