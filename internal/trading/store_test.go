package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
)

func TestBeginBuyGatesConcurrentAttempts(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.BeginBuy(mintA))
	assert.ErrorIs(t, s.BeginBuy(mintA), domain.ErrBuyInFlight)

	// Other mints are unaffected by the in-flight gate.
	require.NoError(t, s.BeginBuy(mintB))
	s.FinishBuy(mintB, false)

	// A failed attempt releases the gate without marking the mint purchased.
	s.FinishBuy(mintA, false)
	require.NoError(t, s.BeginBuy(mintA))

	// A successful attempt blocks the mint forever.
	s.FinishBuy(mintA, true)
	assert.ErrorIs(t, s.BeginBuy(mintA), domain.ErrAlreadyPurchased)
	assert.True(t, s.Purchased(mintA))
	assert.False(t, s.Purchased(mintB))
}

func TestCreateRejectsDuplicateMint(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Create(domain.Position{Mint: mintA, CurrentAmount: 5000}))
	assert.ErrorIs(t, s.Create(domain.Position{Mint: mintA, CurrentAmount: 5000}), domain.ErrAlreadyPurchased)
	assert.Equal(t, 1, s.Count())
}

func TestApplySellPartialFill(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Create(domain.Position{Mint: mintA, CurrentAmount: 10_000, InitialAmount: 10_000}))

	pos, closed, err := s.ApplySell(mintA, 4_000, 0.05)
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, uint64(6_000), pos.CurrentAmount)
	assert.InDelta(t, 0.05, pos.RealizedProfitSOL, 1e-9)
	assert.Equal(t, 1, s.Count())
}

func TestApplySellDustRemainderCloses(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Create(domain.Position{Mint: mintA, CurrentAmount: 10_000}))

	pos, closed, err := s.ApplySell(mintA, 9_500, 0.2)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, uint64(500), pos.CurrentAmount)
	assert.Equal(t, 0, s.Count())

	_, _, err = s.ApplySell(mintA, 100, 0.1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplySellClampsOversizedAmount(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Create(domain.Position{Mint: mintA, CurrentAmount: 10_000}))

	pos, closed, err := s.ApplySell(mintA, 999_999, 0.3)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, uint64(0), pos.CurrentAmount)
}

func TestApplySellUnknownMint(t *testing.T) {
	s := NewStore()
	_, _, err := s.ApplySell(mintA, 100, 0.1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdvanceTakeProfit(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Create(domain.Position{Mint: mintA, CurrentAmount: 5000}))

	s.AdvanceTakeProfit(mintA)
	s.AdvanceTakeProfit(mintA)
	s.AdvanceTakeProfit(mintB) // unknown mint is a no-op

	pos, ok := s.Get(mintA)
	require.True(t, ok)
	assert.Equal(t, 2, pos.TakeProfitIndex)
}

func TestListOrderedByMint(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Create(domain.Position{Mint: mintB, CurrentAmount: 5000}))
	require.NoError(t, s.Create(domain.Position{Mint: mintA, CurrentAmount: 5000}))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, mintA, list[0].Mint)
	assert.Equal(t, mintB, list[1].Mint)
}

func TestGetReturnsSnapshot(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Create(domain.Position{Mint: mintA, CurrentAmount: 5000}))

	pos, ok := s.Get(mintA)
	require.True(t, ok)
	pos.CurrentAmount = 1

	again, _ := s.Get(mintA)
	assert.Equal(t, uint64(5000), again.CurrentAmount)
}
