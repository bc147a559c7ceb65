// Package solana provides chain access: wallet balances, token metadata, and
// address validation over JSON-RPC, plus the trading wallet itself.
package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mr-tron/base58"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
)

// Client implements domain.ChainClient against a Solana JSON-RPC endpoint.
type Client struct {
	rpcURL     string
	wallet     *Wallet
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a chain client bound to the given RPC endpoint and
// wallet. wallet may be nil in watch-only deployments; WalletAddress then
// returns the empty string.
func NewClient(rpcURL string, wallet *Wallet, logger *slog.Logger) *Client {
	return &Client{
		rpcURL: rpcURL,
		wallet: wallet,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With(slog.String("component", "solana")),
	}
}

// WalletAddress returns the trading wallet's base58 public key.
func (c *Client) WalletAddress() string {
	if c.wallet == nil {
		return ""
	}
	return c.wallet.PublicKey()
}

// ValidAddress reports whether addr decodes to a 32-byte Solana public key.
func (c *Client) ValidAddress(addr string) bool {
	raw, err := base58.Decode(addr)
	return err == nil && len(raw) == 32
}

// GetBalance returns the wallet's balance in SOL.
func (c *Client) GetBalance(ctx context.Context) (float64, error) {
	var result struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(ctx, "getBalance", []any{c.WalletAddress()}, &result); err != nil {
		return 0, fmt.Errorf("solana: get balance: %w", err)
	}
	return float64(result.Value) / domain.LamportsPerSOL, nil
}

// GetTokenDecimals resolves mint's decimal precision from its parsed account
// info. It never fails the caller: any error falls back to the default
// precision.
func (c *Client) GetTokenDecimals(ctx context.Context, mint string) int {
	var result struct {
		Value *struct {
			Data struct {
				Parsed struct {
					Info struct {
						Decimals *int `json:"decimals"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"value"`
	}

	params := []any{mint, map[string]string{"encoding": "jsonParsed"}}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		c.logger.WarnContext(ctx, "decimals lookup failed, assuming default",
			slog.String("mint", mint),
			slog.Int("default", domain.DefaultTokenDecimals),
			slog.String("error", err.Error()),
		)
		return domain.DefaultTokenDecimals
	}

	if result.Value == nil || result.Value.Data.Parsed.Info.Decimals == nil {
		return domain.DefaultTokenDecimals
	}
	return *result.Value.Data.Parsed.Info.Decimals
}

// rpcError is a JSON-RPC error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// call performs one JSON-RPC request and decodes the result field into out.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	reqBody, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}

	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
