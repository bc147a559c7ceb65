package trading

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/config"
	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
)

const (
	mintA = "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"
	mintB = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
)

type swapCall struct {
	inputMint  string
	outputMint string
	amount     uint64
}

// fakeQuotes is a scriptable QuoteProvider. quoteFails makes the next N
// GetQuote calls fail; buyOut/sellOut control the quoted output amounts for
// buys (SOL in) and sells (SOL out) respectively.
type fakeQuotes struct {
	mu         sync.Mutex
	quoteFails int
	execErr    error
	buyOut     uint64
	sellOut    uint64
	price      domain.TokenPrice
	priceErr   error
	calls      []swapCall
}

func (f *fakeQuotes) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int, taker string) (domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.quoteFails > 0 {
		f.quoteFails--
		return domain.Quote{}, errors.New("aggregator unreachable")
	}
	f.calls = append(f.calls, swapCall{inputMint, outputMint, amount})

	outAmount := f.buyOut
	if outputMint == domain.SOLMint {
		outAmount = f.sellOut
	}
	return domain.Quote{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		InAmount:    amount,
		OutAmount:   outAmount,
		SlippageBps: slippageBps,
		Transaction: "dHg=",
		RequestID:   "req-1",
	}, nil
}

func (f *fakeQuotes) ExecuteSwap(ctx context.Context, quote domain.Quote) (domain.SwapResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.execErr != nil {
		return domain.SwapResult{}, f.execErr
	}
	return domain.SwapResult{Signature: "sig-1"}, nil
}

func (f *fakeQuotes) GetPriceInSOL(ctx context.Context, mint string) (domain.TokenPrice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.priceErr != nil {
		return domain.TokenPrice{}, f.priceErr
	}
	return f.price, nil
}

func (f *fakeQuotes) sellCalls() []swapCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []swapCall
	for _, c := range f.calls {
		if c.outputMint == domain.SOLMint {
			out = append(out, c)
		}
	}
	return out
}

type fakeChain struct{}

func (fakeChain) GetBalance(ctx context.Context) (float64, error) { return 1.5, nil }

func (fakeChain) GetTokenDecimals(ctx context.Context, mint string) int {
	return domain.DefaultTokenDecimals
}

func (fakeChain) ValidAddress(addr string) bool { return len(addr) >= 32 }

func (fakeChain) WalletAddress() string { return "FakeWa11etPubkey111111111111111111111111111" }

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) Notify(ctx context.Context, event, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeNotifier) seen(event string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e == event {
			return true
		}
	}
	return false
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTrader(quotes *fakeQuotes, notifier Notifier) *Trader {
	return &Trader{
		quotes:          quotes,
		chain:           fakeChain{},
		store:           NewStore(),
		retryq:          NewRetryQueue(3),
		monitors:        newMonitorSet(),
		notifier:        notifier,
		logger:          testLogger(),
		buyAmountSOL:    0.1,
		slippageBps:     250,
		stopLossPercent: 10,
		ladder: []domain.TakeProfitLevel{
			{Multiplier: 2, Percent: 50},
			{Multiplier: 3, Percent: 50},
			{Multiplier: 5, Percent: 100},
		},
		checkInterval: time.Hour,
		retryDelay:    time.Millisecond,
		maxRetries:    3,
	}
}

func TestNewTraderParsesLadderFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Telegram.BotToken = "token"
	cfg.Telegram.Channels = []string{"alpha"}
	cfg.Solana.RPCURL = "http://localhost:8899"
	cfg.Solana.PrivateKey = "key"
	require.NoError(t, cfg.Validate())

	tr := NewTrader(&cfg.Trading, &fakeQuotes{}, fakeChain{}, nil, testLogger())
	require.Len(t, tr.ladder, 3)
	assert.Equal(t, 2.0, tr.ladder[0].Multiplier)
	assert.Equal(t, 100.0, tr.ladder[2].Percent)
}

func TestAttemptBuyOpensPosition(t *testing.T) {
	quotes := &fakeQuotes{buyOut: 1_000_000}
	notifier := &fakeNotifier{}
	tr := newTestTrader(quotes, notifier)
	ctx := context.Background()

	require.True(t, tr.AttemptBuy(ctx, mintA, false))

	pos, ok := tr.store.Get(mintA)
	require.True(t, ok)
	// 0.1 SOL in lamports over the quoted output.
	assert.Equal(t, uint64(1_000_000), pos.InitialAmount)
	assert.Equal(t, uint64(1_000_000), pos.CurrentAmount)
	assert.InDelta(t, 100.0, pos.EntryPrice, 1e-9)
	assert.InDelta(t, 0.1, pos.CostSOL, 1e-9)
	assert.Equal(t, 0, pos.TakeProfitIndex)

	assert.True(t, tr.store.Purchased(mintA))
	assert.Equal(t, 0, tr.RetryQueueLen())
	assert.True(t, notifier.seen("position_opened"))

	tr.monitors.mu.Lock()
	_, monitoring := tr.monitors.monitors[mintA]
	tr.monitors.mu.Unlock()
	assert.True(t, monitoring)

	tr.StopMonitoring(mintA)
	tr.Close()
}

func TestAttemptBuyPurchasedMintRejected(t *testing.T) {
	quotes := &fakeQuotes{buyOut: 1_000_000}
	tr := newTestTrader(quotes, nil)
	ctx := context.Background()

	require.True(t, tr.AttemptBuy(ctx, mintA, false))
	assert.False(t, tr.AttemptBuy(ctx, mintA, false))

	quotes.mu.Lock()
	callCount := len(quotes.calls)
	quotes.mu.Unlock()
	assert.Equal(t, 1, callCount)

	tr.StopMonitoring(mintA)
	tr.Close()
}

func TestAttemptBuyInvalidMintNotQueued(t *testing.T) {
	quotes := &fakeQuotes{}
	tr := newTestTrader(quotes, nil)

	assert.False(t, tr.AttemptBuy(context.Background(), "tooShort", false))
	assert.Equal(t, 0, tr.RetryQueueLen())
	assert.False(t, tr.store.Purchased("tooShort"))
}

func TestAttemptBuyFailureQueuesRetry(t *testing.T) {
	quotes := &fakeQuotes{quoteFails: 1}
	tr := newTestTrader(quotes, nil)

	assert.False(t, tr.AttemptBuy(context.Background(), mintA, false))
	assert.Equal(t, 1, tr.RetryQueueLen())
	assert.Equal(t, 1, tr.retryq.Attempts(mintA))
	assert.Equal(t, 0, tr.OpenCount())
}

func TestRetrySucceedsOnLaterAttempt(t *testing.T) {
	quotes := &fakeQuotes{quoteFails: 2, buyOut: 1_000_000}
	tr := newTestTrader(quotes, nil)
	ctx := context.Background()

	assert.False(t, tr.AttemptBuy(ctx, mintA, false))
	tr.drainOne(ctx) // second attempt, still failing
	assert.Equal(t, 2, tr.retryq.Attempts(mintA))
	assert.Equal(t, 0, tr.OpenCount())

	tr.drainOne(ctx) // third attempt succeeds
	assert.Equal(t, 1, tr.OpenCount())
	assert.Equal(t, 0, tr.RetryQueueLen())
	assert.True(t, tr.store.Purchased(mintA))

	tr.StopMonitoring(mintA)
	tr.Close()
}

func TestMaxRetriesAbandonsMint(t *testing.T) {
	quotes := &fakeQuotes{quoteFails: 10}
	notifier := &fakeNotifier{}
	tr := newTestTrader(quotes, notifier)
	ctx := context.Background()

	assert.False(t, tr.AttemptBuy(ctx, mintA, false)) // attempt 1
	tr.drainOne(ctx)                                  // attempt 2
	tr.drainOne(ctx)                                  // attempt 3, ceiling reached
	assert.Equal(t, 3, tr.retryq.Attempts(mintA))
	assert.Equal(t, 1, tr.RetryQueueLen())

	// The next drain prunes the exhausted entry instead of retrying it.
	tr.drainOne(ctx)
	assert.Equal(t, 0, tr.RetryQueueLen())
	assert.Equal(t, 0, tr.OpenCount())
	assert.True(t, notifier.seen("buy_abandoned"))

	// An abandoned mint was never purchased, so a fresh signal may retry it.
	quotes.mu.Lock()
	quotes.quoteFails = 0
	quotes.buyOut = 500_000
	quotes.mu.Unlock()
	assert.True(t, tr.AttemptBuy(ctx, mintA, false))
	assert.Equal(t, 1, tr.OpenCount())

	tr.StopMonitoring(mintA)
	tr.Close()
}

func TestDrainOneEmptyQueueIsNoop(t *testing.T) {
	quotes := &fakeQuotes{}
	tr := newTestTrader(quotes, nil)

	tr.drainOne(context.Background())

	quotes.mu.Lock()
	defer quotes.mu.Unlock()
	assert.Empty(t, quotes.calls)
}

func TestConcurrentSignalsOpenOnePositionPerMint(t *testing.T) {
	quotes := &fakeQuotes{buyOut: 1_000_000}
	tr := newTestTrader(quotes, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	opened := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opened <- tr.AttemptBuy(ctx, mintA, false)
		}()
	}
	wg.Wait()
	close(opened)

	successes := 0
	for ok := range opened {
		if ok {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, tr.OpenCount())

	tr.StopMonitoring(mintA)
	tr.Close()
}
