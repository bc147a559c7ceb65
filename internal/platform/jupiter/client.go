// Package jupiter is the REST client for the Jupiter Ultra swap API and the
// Jupiter price API. It is the bot's quote provider: quotes, swap execution,
// and spot prices.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
)

const (
	orderPath   = "/ultra/v1/order"
	executePath = "/ultra/v1/execute"
	pricePath   = "/price/v3"
)

// Signer signs a base64-encoded unsigned transaction and returns the signed
// transaction, base64-encoded.
type Signer interface {
	SignTransaction(txBase64 string) (string, error)
}

// Client implements domain.QuoteProvider against the Jupiter HTTP APIs.
type Client struct {
	baseURL    string
	apiKey     string
	signer     Signer
	httpClient *http.Client
}

// NewClient creates a Jupiter client. baseURL is the API root, e.g.
// "https://api.jup.ag"; apiKey may be empty. signer is used to sign swap
// transactions before submission.
func NewClient(baseURL, apiKey string, signer Signer) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		signer:  signer,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetQuote requests an executable order for swapping amount smallest-units of
// inputMint into outputMint on behalf of taker.
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int, taker string) (domain.Quote, error) {
	params := url.Values{
		"inputMint":   {inputMint},
		"outputMint":  {outputMint},
		"amount":      {strconv.FormatUint(amount, 10)},
		"slippageBps": {strconv.Itoa(slippageBps)},
		"taker":       {taker},
	}

	respBody, err := c.doRequest(ctx, http.MethodGet, orderPath+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("jupiter: get order: %w", err)
	}

	var order apiOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return domain.Quote{}, fmt.Errorf("jupiter: decode order: %w", err)
	}

	quote, err := order.toDomain()
	if err != nil {
		return domain.Quote{}, fmt.Errorf("jupiter: %w: %w", domain.ErrQuoteUnavailable, err)
	}
	return quote, nil
}

// ExecuteSwap signs the quote's transaction and submits it for settlement.
func (c *Client) ExecuteSwap(ctx context.Context, quote domain.Quote) (domain.SwapResult, error) {
	signed, err := c.signer.SignTransaction(quote.Transaction)
	if err != nil {
		return domain.SwapResult{}, fmt.Errorf("jupiter: sign transaction: %w", err)
	}

	body := apiExecuteRequest{
		SignedTransaction: signed,
		RequestID:         quote.RequestID,
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, executePath, body)
	if err != nil {
		return domain.SwapResult{}, fmt.Errorf("jupiter: execute: %w", err)
	}

	var result apiExecuteResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return domain.SwapResult{}, fmt.Errorf("jupiter: decode execute response: %w", err)
	}
	if result.Status != "Success" {
		return domain.SwapResult{}, fmt.Errorf("jupiter: %w: status %q: %s", domain.ErrSwapFailed, result.Status, result.Error)
	}

	return domain.SwapResult{Signature: result.Signature}, nil
}

// GetPriceInSOL returns mint's spot price in SOL per whole token, derived
// from the USD prices of the mint and wrapped SOL.
func (c *Client) GetPriceInSOL(ctx context.Context, mint string) (domain.TokenPrice, error) {
	params := url.Values{
		"ids": {mint + "," + domain.SOLMint},
	}

	respBody, err := c.doRequest(ctx, http.MethodGet, pricePath+"?"+params.Encode(), nil)
	if err != nil {
		return domain.TokenPrice{}, fmt.Errorf("jupiter: get price: %w", err)
	}

	var prices map[string]apiPrice
	if err := json.Unmarshal(respBody, &prices); err != nil {
		return domain.TokenPrice{}, fmt.Errorf("jupiter: decode prices: %w", err)
	}

	token, okToken := prices[mint]
	sol, okSol := prices[domain.SOLMint]
	if !okToken || !okSol || token.UsdPrice <= 0 || sol.UsdPrice <= 0 {
		return domain.TokenPrice{}, fmt.Errorf("jupiter: %w for %s", domain.ErrPriceUnavailable, mint)
	}

	return domain.TokenPrice{
		PriceSOL: token.UsdPrice / sol.UsdPrice,
		Decimals: token.Decimals,
	}, nil
}

// doRequest performs an HTTP request against the API, encoding body as JSON
// when present, and returns the response body. Non-2xx responses are errors.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
