// Package feed ingests token signals from Telegram channels. It long-polls
// the Bot API, filters messages to the configured channels, extracts mint
// address candidates, and hands each unseen mint to the signal handler.
package feed

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
)

// mintPattern matches base58 strings of plausible Solana address length.
var mintPattern = regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]{32,44}`)

// SignalHandler receives each detected token signal. It is invoked on its
// own goroutine so a slow buy never stalls ingestion.
type SignalHandler func(ctx context.Context, sig domain.TokenSignal)

// TelegramFeed watches a set of Telegram channels for token mints.
type TelegramFeed struct {
	bot      *tgbotapi.BotAPI
	channels map[string]bool // lowercase channel usernames
	dedup    *Dedup
	handler  SignalHandler
	logger   *slog.Logger
}

// dedupTTL is the window within which repeat sightings of a mint are
// dropped. The trader's purchase gate makes redundant signals harmless; the
// window just keeps noise out of the logs.
const dedupTTL = 10 * time.Minute

// NewTelegramFeed creates a feed for the given bot token and channel
// usernames (without the leading @).
func NewTelegramFeed(botToken string, channels []string, handler SignalHandler, logger *slog.Logger) (*TelegramFeed, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}

	watched := make(map[string]bool, len(channels))
	for _, ch := range channels {
		ch = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ch), "@"))
		if ch != "" {
			watched[ch] = true
		}
	}

	return &TelegramFeed{
		bot:      bot,
		channels: watched,
		dedup:    NewDedup(dedupTTL),
		handler:  handler,
		logger:   logger.With(slog.String("component", "telegram_feed")),
	}, nil
}

// Run long-polls for updates until the context is cancelled.
func (f *TelegramFeed) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := f.bot.GetUpdatesChan(cfg)
	defer f.bot.StopReceivingUpdates()

	f.logger.InfoContext(ctx, "listening to channels",
		slog.Any("channels", keys(f.channels)),
	)

	cleanup := time.NewTicker(dedupTTL)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-cleanup.C:
			f.dedup.Cleanup()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			f.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate inspects one update and emits a signal per new mint found in
// a watched channel's message.
func (f *TelegramFeed) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.ChannelPost
	if msg == nil {
		msg = update.Message
	}
	if msg == nil || msg.Chat == nil {
		return
	}

	username := strings.ToLower(msg.Chat.UserName)
	if username == "" || !f.channels[username] {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	mints := mintPattern.FindAllString(text, -1)
	if len(mints) == 0 {
		return
	}

	for _, mint := range mints {
		if f.dedup.IsDuplicate(mint) {
			f.logger.DebugContext(ctx, "mint seen recently, skipping",
				slog.String("mint", mint),
			)
			continue
		}

		sig := domain.TokenSignal{
			ID:         uuid.NewString(),
			Mint:       mint,
			Channel:    username,
			DetectedAt: time.Now().UTC(),
		}

		f.logger.InfoContext(ctx, "token detected",
			slog.String("signal_id", sig.ID),
			slog.String("mint", mint),
			slog.String("channel", username),
		)

		go f.handler(ctx, sig)
	}
}

// ExtractMints returns the base58 mint candidates found in text. Exposed for
// tests and tooling.
func ExtractMints(text string) []string {
	return mintPattern.FindAllString(text, -1)
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
