package solana

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
)

const testMint = "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// rpcServer answers every JSON-RPC call with the given result payload.
func rpcServer(t *testing.T, wantMethod string, result any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, wantMethod, req.Method)

		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  result,
		})
	}))
}

func TestValidAddress(t *testing.T) {
	c := NewClient("http://unused.invalid", nil, discardLogger())

	assert.True(t, c.ValidAddress(testMint))
	assert.True(t, c.ValidAddress(domain.SOLMint))
	assert.False(t, c.ValidAddress(""))
	assert.False(t, c.ValidAddress("tooShort"))
	assert.False(t, c.ValidAddress("0OIl-not-base58-characters-at-all-00000000000"))
}

func TestWalletAddressWithoutWallet(t *testing.T) {
	c := NewClient("http://unused.invalid", nil, discardLogger())
	assert.Equal(t, "", c.WalletAddress())
}

func TestGetBalance(t *testing.T) {
	srv := rpcServer(t, "getBalance", map[string]any{"value": 1_500_000_000})
	defer srv.Close()

	c := NewClient(srv.URL, nil, discardLogger())
	balance, err := c.GetBalance(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.5, balance, 1e-9)
}

func TestGetBalanceRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]any{"code": -32005, "message": "node is behind"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, discardLogger())
	_, err := c.GetBalance(context.Background())
	assert.ErrorContains(t, err, "node is behind")
}

func TestGetTokenDecimals(t *testing.T) {
	srv := rpcServer(t, "getAccountInfo", map[string]any{
		"value": map[string]any{
			"data": map[string]any{
				"parsed": map[string]any{
					"info": map[string]any{"decimals": 6},
				},
			},
		},
	})
	defer srv.Close()

	c := NewClient(srv.URL, nil, discardLogger())
	assert.Equal(t, 6, c.GetTokenDecimals(context.Background(), testMint))
}

func TestGetTokenDecimalsFallsBackToDefault(t *testing.T) {
	t.Run("missing account", func(t *testing.T) {
		srv := rpcServer(t, "getAccountInfo", map[string]any{"value": nil})
		defer srv.Close()

		c := NewClient(srv.URL, nil, discardLogger())
		assert.Equal(t, domain.DefaultTokenDecimals, c.GetTokenDecimals(context.Background(), testMint))
	})

	t.Run("unparsed data", func(t *testing.T) {
		srv := rpcServer(t, "getAccountInfo", map[string]any{
			"value": map[string]any{"data": map[string]any{}},
		})
		defer srv.Close()

		c := NewClient(srv.URL, nil, discardLogger())
		assert.Equal(t, domain.DefaultTokenDecimals, c.GetTokenDecimals(context.Background(), testMint))
	})

	t.Run("rpc unreachable", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", nil, discardLogger())
		assert.Equal(t, domain.DefaultTokenDecimals, c.GetTokenDecimals(context.Background(), testMint))
	})
}
