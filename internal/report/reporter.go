// Package report produces periodic account summaries on a cron schedule
// and pushes them through the notifier.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
)

// StatusSource exposes the trading state the reporter summarizes.
type StatusSource interface {
	Positions() []domain.Position
	RetryQueueLen() int
}

// BalanceSource reports the wallet's SOL balance.
type BalanceSource interface {
	GetBalance(ctx context.Context) (float64, error)
}

// Notifier delivers the rendered summary.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Reporter runs a cron schedule and emits a positions and balance summary
// on each trigger.
type Reporter struct {
	cron     *cron.Cron
	schedule string
	status   StatusSource
	chain    BalanceSource
	notifier Notifier
	logger   *slog.Logger
}

// NewReporter creates a Reporter with the given cron schedule
// (standard 5-field syntax).
func NewReporter(schedule string, status StatusSource, chain BalanceSource, notifier Notifier, logger *slog.Logger) *Reporter {
	return &Reporter{
		cron:     cron.New(),
		schedule: schedule,
		status:   status,
		chain:    chain,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "reporter")),
	}
}

// Start registers the summary job and starts the scheduler.
func (r *Reporter) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		if err := r.emit(ctx); err != nil {
			r.logger.WarnContext(ctx, "summary report failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("report: invalid schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()
	r.logger.InfoContext(ctx, "reporter started", slog.String("schedule", r.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (r *Reporter) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reporter) emit(ctx context.Context) error {
	positions := r.status.Positions()

	var b strings.Builder
	fmt.Fprintf(&b, "Open positions: %d\n", len(positions))
	fmt.Fprintf(&b, "Pending retries: %d\n", r.status.RetryQueueLen())

	if r.chain != nil {
		if balance, err := r.chain.GetBalance(ctx); err != nil {
			r.logger.WarnContext(ctx, "balance lookup failed", slog.String("error", err.Error()))
		} else {
			fmt.Fprintf(&b, "Wallet balance: %.4f SOL\n", balance)
		}
	}

	var realized float64
	for _, p := range positions {
		realized += p.RealizedProfitSOL
		fmt.Fprintf(&b, "\n%s\n  entry %.6g, held %d, realized %.4f SOL, tier %d",
			p.Mint, p.EntryPrice, p.CurrentAmount, p.RealizedProfitSOL, p.TakeProfitIndex)
	}
	if len(positions) > 0 {
		fmt.Fprintf(&b, "\n\nRealized (open positions): %.4f SOL", realized)
	}

	return r.notifier.Notify(ctx, "report", "Periodic Summary", b.String())
}
