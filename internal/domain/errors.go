package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyPurchased = errors.New("mint already purchased")
	ErrBuyInFlight      = errors.New("buy already in flight")
	ErrInvalidMint      = errors.New("invalid mint address")
	ErrQuoteUnavailable = errors.New("quote unavailable")
	ErrSwapFailed       = errors.New("swap execution failed")
	ErrPriceUnavailable = errors.New("price unavailable")
)
