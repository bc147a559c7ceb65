// Package app provides the top-level application lifecycle for the sniper
// bot. It wires together the chain and swap clients, the trader, the
// Telegram signal feed, the status server, and notifications, and supervises
// them until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/config"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/feed"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/trading"
)

const shutdownTimeout = 10 * time.Second

// App is the root application object.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the feed, trader, and optional status
// server and reporter, and blocks until the context is cancelled or a
// component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.Bool("watch_only", a.cfg.WatchOnly),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, err := Wire(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}

	a.checkBalance(ctx, deps)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Feed.Run(ctx)
	})

	g.Go(func() error {
		return deps.Trader.Run(ctx)
	})

	if deps.Server != nil {
		g.Go(func() error {
			return deps.Server.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return deps.Server.Shutdown(shutdownCtx)
		})
	}

	if deps.Reporter != nil {
		if err := deps.Reporter.Start(ctx); err != nil {
			return fmt.Errorf("app: reporter: %w", err)
		}
		g.Go(func() error {
			<-ctx.Done()
			deps.Reporter.Stop()
			return nil
		})
	}

	err = g.Wait()

	// Let in-flight sells from active monitors finish before returning.
	deps.Trader.Close()

	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// checkBalance logs the wallet balance at startup and warns when it cannot
// cover a single buy.
func (a *App) checkBalance(ctx context.Context, deps *Dependencies) {
	if a.cfg.WatchOnly {
		return
	}
	balance, err := deps.Chain.GetBalance(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "balance check failed", slog.String("error", err.Error()))
		return
	}
	a.logger.InfoContext(ctx, "wallet balance",
		slog.String("wallet", deps.Chain.WalletAddress()),
		slog.Float64("balance_sol", balance),
	)
	if balance < a.cfg.Trading.BuyAmountSOL {
		a.logger.WarnContext(ctx, "balance below buy amount",
			slog.Float64("balance_sol", balance),
			slog.Float64("buy_amount_sol", a.cfg.Trading.BuyAmountSOL),
		)
	}
}

// tradeHandler returns a signal handler that attempts a buy for each
// detected mint.
func tradeHandler(trader *trading.Trader, logger *slog.Logger) feed.SignalHandler {
	log := logger.With(slog.String("component", "signals"))
	return func(ctx context.Context, sig domain.TokenSignal) {
		log.InfoContext(ctx, "token signal",
			slog.String("signal_id", sig.ID),
			slog.String("mint", sig.Mint),
			slog.String("channel", sig.Channel),
		)
		trader.AttemptBuy(ctx, sig.Mint, false)
	}
}

// watchHandler returns a signal handler that only logs detections.
func watchHandler(logger *slog.Logger) feed.SignalHandler {
	log := logger.With(slog.String("component", "signals"))
	return func(ctx context.Context, sig domain.TokenSignal) {
		log.InfoContext(ctx, "token signal (watch only)",
			slog.String("signal_id", sig.ID),
			slog.String("mint", sig.Mint),
			slog.String("channel", sig.Channel),
		)
	}
}
