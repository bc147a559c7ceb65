package app

import (
	"fmt"
	"log/slog"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/config"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/feed"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/notify"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/platform/jupiter"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/platform/solana"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/report"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/server"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/trading"
)

// Dependencies bundles every component the running application needs. It is
// constructed by Wire.
type Dependencies struct {
	Chain    *solana.Client
	Quotes   *jupiter.Client
	Notifier *notify.Notifier
	Trader   *trading.Trader
	Feed     *feed.TelegramFeed
	Server   *server.Server
	Reporter *report.Reporter
}

// Wire constructs all concrete components from the given configuration.
func Wire(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	// Wallet is optional in watch-only mode; without one the chain client
	// can still read prices and metadata but never signs.
	var wallet *solana.Wallet
	if cfg.Solana.PrivateKey != "" {
		w, err := solana.NewWallet(cfg.Solana.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("wire: wallet: %w", err)
		}
		wallet = w
	}

	deps.Chain = solana.NewClient(cfg.Solana.RPCURL, wallet, logger)

	var signer jupiter.Signer
	if wallet != nil {
		signer = wallet
	}
	deps.Quotes = jupiter.NewClient(cfg.Jupiter.BaseURL, cfg.Jupiter.APIKey, signer)

	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" {
		ts, err := notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("wire: telegram sender: %w", err)
		}
		senders = append(senders, ts)
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	deps.Trader = trading.NewTrader(&cfg.Trading, deps.Quotes, deps.Chain, deps.Notifier, logger)

	handler := tradeHandler(deps.Trader, logger)
	if cfg.WatchOnly {
		handler = watchHandler(logger)
	}

	tf, err := feed.NewTelegramFeed(cfg.Telegram.BotToken, cfg.Telegram.Channels, handler, logger)
	if err != nil {
		return nil, fmt.Errorf("wire: telegram feed: %w", err)
	}
	deps.Feed = tf

	if cfg.Server.Enabled {
		deps.Server = server.NewServer(cfg.Server.Port, deps.Trader, logger)
	}

	if cfg.Report.Enabled {
		deps.Reporter = report.NewReporter(cfg.Report.Cron, deps.Trader, deps.Chain, deps.Notifier, logger)
	}

	return deps, nil
}
