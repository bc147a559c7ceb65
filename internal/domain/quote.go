package domain

// Quote is a validated, executable swap quote returned by the quote provider.
// InAmount and OutAmount are raw smallest-unit amounts of the input and output
// mints; Transaction is the base64 unsigned transaction to sign and submit.
type Quote struct {
	InputMint   string
	OutputMint  string
	InAmount    uint64
	OutAmount   uint64
	SlippageBps int
	Transaction string
	RequestID   string
}

// NativePrice returns the quote's implied price in native units: input
// smallest-units paid per output smallest-unit received.
func (q Quote) NativePrice() float64 {
	if q.OutAmount == 0 {
		return 0
	}
	return float64(q.InAmount) / float64(q.OutAmount)
}

// SwapResult is the settlement outcome of a submitted swap.
type SwapResult struct {
	Signature string
}

// TokenPrice is a spot price answer for one mint.
//
// PriceSOL is SOL per whole token (decimal-adjusted). Decimals is the mint's
// precision, carried so callers can convert to the native-unit basis.
type TokenPrice struct {
	PriceSOL float64
	Decimals int
}

// Native converts the spot price to native units (lamports per raw token
// unit), the same basis as Position.EntryPrice.
func (t TokenPrice) Native() float64 {
	scale := 1.0
	for i := 0; i < t.Decimals; i++ {
		scale *= 10
	}
	return t.PriceSOL / scale * LamportsPerSOL
}
