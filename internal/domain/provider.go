package domain

import "context"

// QuoteProvider answers executable quotes, submits signed swaps, and serves
// spot prices. Implementations wrap a remote aggregator API; every call
// carries its own timeout and a failed call is an ordinary retryable error,
// never fatal.
type QuoteProvider interface {
	// GetQuote returns an executable quote for swapping amount smallest-units
	// of inputMint into outputMint on behalf of taker.
	GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int, taker string) (Quote, error)

	// ExecuteSwap signs and submits the quote's transaction and returns the
	// settlement result.
	ExecuteSwap(ctx context.Context, quote Quote) (SwapResult, error)

	// GetPriceInSOL returns the current spot price of mint in SOL terms.
	GetPriceInSOL(ctx context.Context, mint string) (TokenPrice, error)
}

// ChainClient reads account state and token metadata from the chain.
type ChainClient interface {
	// GetBalance returns the wallet's balance in SOL.
	GetBalance(ctx context.Context) (float64, error)

	// GetTokenDecimals resolves the decimal precision of mint. It must not
	// fail the caller: on any error it returns DefaultTokenDecimals.
	GetTokenDecimals(ctx context.Context, mint string) int

	// ValidAddress reports whether addr is a well-formed Solana address.
	ValidAddress(addr string) bool

	// WalletAddress returns the trading wallet's public key.
	WalletAddress() string
}
