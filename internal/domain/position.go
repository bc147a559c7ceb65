package domain

import "time"

// DustThreshold is the minimum holding, in raw token units, below which a
// position is considered fully exited and removed from the store.
const DustThreshold uint64 = 1000

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// DefaultTokenDecimals is assumed for a mint whose metadata cannot be read.
const DefaultTokenDecimals = 9

// SOLMint is the mint address of wrapped SOL, used as the quote input for
// buys and the quote output for sells.
const SOLMint = "So11111111111111111111111111111111111111112"

// Position is one currently-held token, keyed by its mint address.
//
// EntryPrice is expressed in native units: lamports spent per raw token unit
// received at fill time, before any decimal normalization. Amounts are raw
// token units (the mint's smallest denomination). CostSOL and
// RealizedProfitSOL are in whole SOL.
type Position struct {
	Mint              string
	EntryPrice        float64
	InitialAmount     uint64
	CurrentAmount     uint64
	CostSOL           float64
	RealizedProfitSOL float64
	TakeProfitIndex   int
	CreatedAt         time.Time
}

// Closed reports whether the remaining holding has dropped under the dust
// threshold, i.e. the position is fully exited.
func (p Position) Closed() bool {
	return p.CurrentAmount < DustThreshold
}

// PriceChangePercent returns the percentage move of currentPrice against the
// entry price, where currentPrice is in the same native-unit basis.
func (p Position) PriceChangePercent(currentPrice float64) float64 {
	return (currentPrice - p.EntryPrice) / p.EntryPrice * 100
}

// TakeProfitLevel is one tier of the take-profit ladder. Multiplier is the
// price-growth factor that triggers the tier (entry price x multiplier) and
// Percent is the fraction of the remaining holding to liquidate when it fires.
type TakeProfitLevel struct {
	Multiplier float64
	Percent    float64
}
