package trading

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/config"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/metrics"
)

// Per-call timeouts for outbound network operations. A timeout is an ordinary
// retryable failure, never fatal to the process.
const (
	quoteTimeout   = 15 * time.Second
	executeTimeout = 30 * time.Second
	priceTimeout   = 5 * time.Second
)

const (
	exitReasonStopLoss   = "stop_loss"
	exitReasonTakeProfit = "take_profit"
)

// Notifier delivers operator-facing event notifications. Events not in the
// operator's allow-list are dropped by the implementation.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Trader coordinates the full position lifecycle: it executes entries,
// spawns a monitoring loop per open position, evaluates exit rules each tick,
// performs exits, and drains the buy-retry queue.
type Trader struct {
	quotes   domain.QuoteProvider
	chain    domain.ChainClient
	store    *Store
	retryq   *RetryQueue
	monitors *monitorSet
	notifier Notifier
	logger   *slog.Logger

	buyAmountSOL    float64
	slippageBps     int
	stopLossPercent float64
	ladder          []domain.TakeProfitLevel
	checkInterval   time.Duration
	retryDelay      time.Duration
	maxRetries      int
}

// NewTrader creates a Trader from the validated trading configuration.
func NewTrader(
	cfg *config.TradingConfig,
	quotes domain.QuoteProvider,
	chain domain.ChainClient,
	notifier Notifier,
	logger *slog.Logger,
) *Trader {
	return &Trader{
		quotes:          quotes,
		chain:           chain,
		store:           NewStore(),
		retryq:          NewRetryQueue(cfg.MaxBuyRetries),
		monitors:        newMonitorSet(),
		notifier:        notifier,
		logger:          logger.With(slog.String("component", "trader")),
		buyAmountSOL:    cfg.BuyAmountSOL,
		slippageBps:     cfg.SlippageBps,
		stopLossPercent: cfg.StopLossPercent,
		ladder:          cfg.Ladder(),
		checkInterval:   cfg.PriceCheckInterval.Duration,
		retryDelay:      cfg.RetryDelay.Duration,
		maxRetries:      cfg.MaxBuyRetries,
	}
}

// Positions returns snapshots of all open positions.
func (t *Trader) Positions() []domain.Position {
	return t.store.List()
}

// OpenCount returns the number of open positions.
func (t *Trader) OpenCount() int {
	return t.store.Count()
}

// RetryQueueLen returns the number of mints waiting for a buy retry.
func (t *Trader) RetryQueueLen() int {
	return t.retryq.Len()
}

// AttemptBuy tries to open a position in mint with the configured fixed SOL
// amount. It reports whether a position was opened. A mint that was ever
// bought successfully is rejected permanently; a malformed mint is rejected
// without queueing a retry; quote or execution failures enqueue the mint for
// a bounded number of retries. Safe to call concurrently for the same or
// distinct mints.
func (t *Trader) AttemptBuy(ctx context.Context, mint string, isRetry bool) bool {
	if err := t.store.BeginBuy(mint); err != nil {
		t.logger.InfoContext(ctx, "skipping buy",
			slog.String("mint", shortMint(mint)),
			slog.String("reason", err.Error()),
		)
		return false
	}

	opened := t.tryBuy(ctx, mint, isRetry)
	t.store.FinishBuy(mint, opened)
	if opened {
		t.retryq.Remove(mint)
		metrics.BuyRecorded("opened")
		metrics.SetOpenPositions(t.store.Count())
		t.StartMonitoring(ctx, mint)
	}
	return opened
}

// tryBuy performs one buy attempt end to end. It returns true only when the
// swap settled and the position was inserted.
func (t *Trader) tryBuy(ctx context.Context, mint string, isRetry bool) bool {
	if isRetry {
		t.logger.InfoContext(ctx, "retrying buy",
			slog.String("mint", shortMint(mint)),
			slog.Int("attempt", t.retryq.Attempts(mint)),
		)
	} else {
		t.logger.InfoContext(ctx, "attempting buy", slog.String("mint", mint))
	}

	if !t.chain.ValidAddress(mint) {
		// Permanent rejection: malformed mints never reach the retry queue.
		t.logger.ErrorContext(ctx, "rejecting buy",
			slog.String("mint", mint),
			slog.String("error", domain.ErrInvalidMint.Error()),
		)
		metrics.BuyRecorded("rejected")
		return false
	}

	amountLamports := uint64(math.Floor(t.buyAmountSOL * domain.LamportsPerSOL))

	quoteCtx, cancel := context.WithTimeout(ctx, quoteTimeout)
	quote, err := t.quotes.GetQuote(quoteCtx, domain.SOLMint, mint, amountLamports, t.slippageBps, t.chain.WalletAddress())
	cancel()
	if err != nil {
		t.failBuy(ctx, mint, fmt.Errorf("get quote: %w", err))
		return false
	}

	execCtx, cancel := context.WithTimeout(ctx, executeTimeout)
	result, err := t.quotes.ExecuteSwap(execCtx, quote)
	cancel()
	if err != nil {
		t.failBuy(ctx, mint, fmt.Errorf("execute swap: %w", err))
		return false
	}

	// Metadata lookup is best-effort and falls back to the default precision;
	// it must never fail the buy flow.
	decimals := t.chain.GetTokenDecimals(ctx, mint)

	entryPrice := quote.NativePrice()
	solSpent := float64(quote.InAmount) / domain.LamportsPerSOL
	tokensReceived := float64(quote.OutAmount) / math.Pow10(decimals)

	pos := domain.Position{
		Mint:            mint,
		EntryPrice:      entryPrice,
		InitialAmount:   quote.OutAmount,
		CurrentAmount:   quote.OutAmount,
		CostSOL:         solSpent,
		TakeProfitIndex: 0,
		CreatedAt:       time.Now().UTC(),
	}
	if err := t.store.Create(pos); err != nil {
		t.logger.ErrorContext(ctx, "position insert failed",
			slog.String("mint", mint),
			slog.String("error", err.Error()),
		)
		return false
	}

	t.logger.InfoContext(ctx, "position opened",
		slog.String("mint", mint),
		slog.String("signature", result.Signature),
		slog.Float64("sol_spent", solSpent),
		slog.Float64("tokens_received", tokensReceived),
		slog.Float64("entry_price_native", entryPrice),
		slog.Int("decimals", decimals),
	)

	t.notify(ctx, "position_opened", "Position opened",
		fmt.Sprintf("%s\nSpent: %.6f SOL\nReceived: %.4f tokens", shortMint(mint), solSpent, tokensReceived))

	return true
}

// failBuy records a retryable entry failure: the mint's attempt count grows
// by one and the mint stays queued until the ceiling is reached.
func (t *Trader) failBuy(ctx context.Context, mint string, cause error) {
	metrics.BuyRecorded("failed")

	attempts, abandoned := t.retryq.RecordFailure(mint)
	if abandoned {
		t.abandon(ctx, mint, attempts)
		return
	}

	t.logger.WarnContext(ctx, "buy failed, queued for retry",
		slog.String("mint", shortMint(mint)),
		slog.Int("attempt", attempts),
		slog.String("error", cause.Error()),
	)
}

// abandon gives up on a mint whose retry ceiling was reached. Only an
// external re-signal can revive it (and only if it was never purchased).
func (t *Trader) abandon(ctx context.Context, mint string, attempts int) {
	t.logger.ErrorContext(ctx, "max retries reached, giving up",
		slog.String("mint", shortMint(mint)),
		slog.Int("attempts", attempts),
	)
	t.notify(ctx, "buy_abandoned", "Buy abandoned",
		fmt.Sprintf("%s after %d attempts", shortMint(mint), attempts))
}

// Run drains the retry queue until the context is cancelled. The drain fires
// at twice the retry delay and processes at most one queued mint per tick:
// it waits the retry delay, then performs exactly one retry. Retries are
// never concurrent with each other.
func (t *Trader) Run(ctx context.Context) error {
	t.logger.InfoContext(ctx, "retry processor started",
		slog.Duration("drain_interval", 2*t.retryDelay),
	)

	ticker := time.NewTicker(2 * t.retryDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.drainOne(ctx)
		}
	}
}

// drainOne performs a single drain tick: prune exhausted entries, then retry
// the oldest eligible mint, if any.
func (t *Trader) drainOne(ctx context.Context) {
	if t.retryq.Len() == 0 {
		return
	}

	mint, attempts, pruned, ok := t.retryq.Next()
	for _, p := range pruned {
		t.abandon(ctx, p, t.maxRetries)
	}
	if !ok {
		return
	}

	t.logger.InfoContext(ctx, "processing retry queue",
		slog.Int("queued", t.retryq.Len()),
		slog.String("mint", shortMint(mint)),
		slog.Int("attempts", attempts),
	)

	select {
	case <-ctx.Done():
		return
	case <-time.After(t.retryDelay):
	}

	metrics.RetryDrained()
	t.AttemptBuy(ctx, mint, true)
}

// executeSell swaps amount raw units of mint back to SOL and applies the fill
// to the position. Sells are never retried automatically; a failed sell
// leaves the position untouched and relies on a later tick re-triggering the
// same rule. It reports whether the fill settled.
func (t *Trader) executeSell(ctx context.Context, mint string, amount uint64, reason string) bool {
	t.logger.InfoContext(ctx, "selling",
		slog.String("mint", shortMint(mint)),
		slog.Uint64("amount", amount),
		slog.String("reason", reason),
	)

	quoteCtx, cancel := context.WithTimeout(ctx, quoteTimeout)
	quote, err := t.quotes.GetQuote(quoteCtx, mint, domain.SOLMint, amount, t.slippageBps, t.chain.WalletAddress())
	cancel()
	if err != nil {
		t.logger.ErrorContext(ctx, "sell quote failed",
			slog.String("mint", shortMint(mint)),
			slog.String("error", err.Error()),
		)
		metrics.SellRecorded(reason, "failed")
		return false
	}

	solReceived := float64(quote.OutAmount) / domain.LamportsPerSOL

	execCtx, cancel := context.WithTimeout(ctx, executeTimeout)
	result, err := t.quotes.ExecuteSwap(execCtx, quote)
	cancel()
	if err != nil {
		t.logger.ErrorContext(ctx, "sell execution failed",
			slog.String("mint", shortMint(mint)),
			slog.String("error", err.Error()),
		)
		metrics.SellRecorded(reason, "failed")
		return false
	}

	pos, closed, err := t.store.ApplySell(mint, amount, solReceived)
	if err != nil {
		t.logger.ErrorContext(ctx, "sell fill had no position to apply to",
			slog.String("mint", shortMint(mint)),
			slog.String("error", err.Error()),
		)
		return false
	}

	metrics.SellRecorded(reason, "filled")
	t.logger.InfoContext(ctx, "sold",
		slog.String("mint", shortMint(mint)),
		slog.String("signature", result.Signature),
		slog.Float64("sol_received", solReceived),
		slog.Uint64("remaining", pos.CurrentAmount),
	)
	t.notify(ctx, reason, "Sold",
		fmt.Sprintf("%s\nReceived: %.6f SOL (%s)", shortMint(mint), solReceived, reason))

	if closed {
		totalProfit := pos.RealizedProfitSOL - pos.CostSOL
		t.StopMonitoring(mint)
		metrics.SetOpenPositions(t.store.Count())
		metrics.AddRealizedProfit(totalProfit)

		t.logger.InfoContext(ctx, "position closed",
			slog.String("mint", shortMint(mint)),
			slog.Float64("total_profit_sol", totalProfit),
		)
		t.notify(ctx, "position_closed", "Position closed",
			fmt.Sprintf("%s\nTotal profit: %.6f SOL", shortMint(mint), totalProfit))
	}

	return true
}

// Close waits for every monitoring loop to finish. Call after the root
// context has been cancelled.
func (t *Trader) Close() {
	t.monitors.wait()
}

func (t *Trader) notify(ctx context.Context, event, title, message string) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.Notify(ctx, event, title, message); err != nil {
		t.logger.WarnContext(ctx, "notification failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

// shortMint abbreviates a mint address for log output.
func shortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:8] + "..."
}
