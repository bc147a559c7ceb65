package trading

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// monitor is the stop handle for one position's monitoring loop. Closing
// stopCh is guarded by a sync.Once so Stop is race-free against both the
// loop itself and concurrent callers; a tick already in flight is allowed to
// finish.
type monitor struct {
	stopCh   chan struct{}
	stopOnce sync.Once
}

func (m *monitor) stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// monitorSet is the registry of active monitoring loops, at most one per
// mint.
type monitorSet struct {
	mu       sync.Mutex
	monitors map[string]*monitor
	wg       sync.WaitGroup
}

func newMonitorSet() *monitorSet {
	return &monitorSet{monitors: make(map[string]*monitor)}
}

// add registers a monitor for mint. It returns nil if one is already active,
// in which case starting another is a no-op.
func (ms *monitorSet) add(mint string) *monitor {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.monitors[mint]; ok {
		return nil
	}
	m := &monitor{stopCh: make(chan struct{})}
	ms.monitors[mint] = m
	return m
}

// remove signals the monitor for mint to stop and drops it from the registry.
// After remove returns no new tick for that mint will begin.
func (ms *monitorSet) remove(mint string) {
	ms.mu.Lock()
	m := ms.monitors[mint]
	delete(ms.monitors, mint)
	ms.mu.Unlock()

	if m != nil {
		m.stop()
	}
}

// wait blocks until every monitoring goroutine has exited.
func (ms *monitorSet) wait() {
	ms.wg.Wait()
}

// StartMonitoring spawns the periodic evaluation loop for mint. Starting a
// loop while one is already running for the same mint is a no-op.
func (t *Trader) StartMonitoring(ctx context.Context, mint string) {
	m := t.monitors.add(mint)
	if m == nil {
		return
	}

	t.logger.InfoContext(ctx, "monitoring started",
		slog.String("mint", mint),
		slog.Duration("interval", t.checkInterval),
	)

	t.monitors.wg.Add(1)
	go func() {
		defer t.monitors.wg.Done()

		ticker := time.NewTicker(t.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				t.logger.Info("monitoring stopped", slog.String("mint", mint))
				return
			case <-ticker.C:
				// The tick body runs synchronously, so ticks for one mint
				// never overlap; a slow network call simply delays the next
				// evaluation.
				t.checkPosition(ctx, mint)
			}
		}
	}()
}

// StopMonitoring stops the loop for mint. Safe to call from within the loop's
// own tick (it does not wait for the goroutine to exit) and idempotent.
func (t *Trader) StopMonitoring(mint string) {
	t.monitors.remove(mint)
}

// checkPosition runs one monitoring tick for mint: refresh the spot price,
// evaluate the stop-loss rule and then the current take-profit tier, and
// trigger exits. A missing position (closed concurrently) and a failed price
// lookup are both quiet no-ops for this tick.
func (t *Trader) checkPosition(ctx context.Context, mint string) {
	pos, ok := t.store.Get(mint)
	if !ok {
		return
	}

	priceCtx, cancel := context.WithTimeout(ctx, priceTimeout)
	price, err := t.quotes.GetPriceInSOL(priceCtx, mint)
	cancel()
	if err != nil {
		t.logger.WarnContext(ctx, "price unavailable, skipping tick",
			slog.String("mint", shortMint(mint)),
			slog.String("error", err.Error()),
		)
		return
	}

	currentNative := price.Native()
	change := pos.PriceChangePercent(currentNative)

	t.logger.DebugContext(ctx, "position tick",
		slog.String("mint", shortMint(mint)),
		slog.Uint64("holding", pos.CurrentAmount),
		slog.Float64("entry_price", pos.EntryPrice),
		slog.Float64("current_price", currentNative),
		slog.Float64("change_pct", change),
	)

	// Stop-loss first: it liquidates everything and overrides any
	// take-profit tier eligible in the same tick.
	if change <= -t.stopLossPercent {
		t.logger.WarnContext(ctx, "stop loss hit, selling all",
			slog.String("mint", shortMint(mint)),
			slog.Float64("change_pct", change),
		)
		t.executeSell(ctx, mint, pos.CurrentAmount, exitReasonStopLoss)
		return
	}

	// Take-profit ladder: strictly in order, at most one tier per tick.
	if pos.TakeProfitIndex >= len(t.ladder) {
		return
	}
	tier := t.ladder[pos.TakeProfitIndex]
	if currentNative < pos.EntryPrice*tier.Multiplier {
		return
	}

	sellAmount := uint64(float64(pos.CurrentAmount) * tier.Percent / 100)
	t.logger.InfoContext(ctx, "take profit hit",
		slog.String("mint", shortMint(mint)),
		slog.Float64("multiplier", tier.Multiplier),
		slog.Float64("sell_percent", tier.Percent),
		slog.Uint64("sell_amount", sellAmount),
	)
	// The tier advances even if further tiers would also qualify right now;
	// they get their own ticks. A failed sell leaves the index alone so the
	// same tier re-triggers on a later tick.
	if t.executeSell(ctx, mint, sellAmount, exitReasonTakeProfit) {
		t.store.AdvanceTakeProfit(mint)
	}
}
