package jupiter

import (
	"fmt"
	"strconv"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
)

// apiOrder is the raw Ultra order response. The upstream payload is loosely
// typed and carries several optional amount variants; toDomain resolves them
// into one canonical pair and rejects responses missing required fields.
type apiOrder struct {
	InputMint   string `json:"inputMint"`
	OutputMint  string `json:"outputMint"`
	InAmount    string `json:"inAmount"`
	OutAmount   string `json:"outAmount"`
	SlippageBps int    `json:"slippageBps"`
	Transaction string `json:"transaction"`
	RequestID   string `json:"requestId"`

	// Optional execution-result variants; when present they are more precise
	// than the base amounts.
	InputAmountResult  string `json:"inputAmountResult"`
	OutputAmountResult string `json:"outputAmountResult"`
	TotalInputAmount   string `json:"totalInputAmount"`
	TotalOutputAmount  string `json:"totalOutputAmount"`
}

// toDomain validates the raw order and converts it to a domain Quote.
func (o apiOrder) toDomain() (domain.Quote, error) {
	if o.Transaction == "" {
		return domain.Quote{}, fmt.Errorf("order response missing transaction")
	}
	if o.RequestID == "" {
		return domain.Quote{}, fmt.Errorf("order response missing requestId")
	}

	inAmount, err := firstAmount(o.InputAmountResult, o.TotalInputAmount, o.InAmount)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("order input amount: %w", err)
	}
	outAmount, err := firstAmount(o.OutputAmountResult, o.TotalOutputAmount, o.OutAmount)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("order output amount: %w", err)
	}
	if outAmount == 0 {
		return domain.Quote{}, fmt.Errorf("order output amount is zero")
	}

	return domain.Quote{
		InputMint:   o.InputMint,
		OutputMint:  o.OutputMint,
		InAmount:    inAmount,
		OutAmount:   outAmount,
		SlippageBps: o.SlippageBps,
		Transaction: o.Transaction,
		RequestID:   o.RequestID,
	}, nil
}

// firstAmount parses the first non-empty candidate as an unsigned amount.
func firstAmount(candidates ...string) (uint64, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		n, err := strconv.ParseUint(c, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", c, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("no amount present")
}

// apiExecuteRequest is the Ultra execute request body.
type apiExecuteRequest struct {
	SignedTransaction string `json:"signedTransaction"`
	RequestID         string `json:"requestId"`
}

// apiExecuteResult is the Ultra execute response.
type apiExecuteResult struct {
	Status    string `json:"status"`
	Signature string `json:"signature"`
	Error     string `json:"error"`
	Code      int    `json:"code"`
}

// apiPrice is one entry of the price v3 response, keyed by mint.
type apiPrice struct {
	UsdPrice float64 `json:"usdPrice"`
	Decimals int     `json:"decimals"`
	BlockID  int64   `json:"blockId"`
}
