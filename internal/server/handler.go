package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/0xharp/solana-telegram-sniper-bot/internal/domain"
)

// StatusSource exposes the trading state the API reports.
type StatusSource interface {
	Positions() []domain.Position
	OpenCount() int
	RetryQueueLen() int
}

type handler struct {
	status  StatusSource
	logger  *slog.Logger
	started time.Time
}

func newHandler(status StatusSource, logger *slog.Logger) *handler {
	return &handler{
		status:  status,
		logger:  logger.With(slog.String("component", "api")),
		started: time.Now(),
	}
}

// Health reports liveness and uptime.
func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.started).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Status summarizes open positions and the pending retry queue.
func (h *handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"open_positions":  h.status.OpenCount(),
		"pending_retries": h.status.RetryQueueLen(),
	})
}

type positionView struct {
	Mint              string    `json:"mint"`
	EntryPrice        float64   `json:"entry_price"`
	InitialAmount     uint64    `json:"initial_amount"`
	CurrentAmount     uint64    `json:"current_amount"`
	CostSOL           float64   `json:"cost_sol"`
	RealizedProfitSOL float64   `json:"realized_profit_sol"`
	TakeProfitIndex   int       `json:"take_profit_index"`
	CreatedAt         time.Time `json:"created_at"`
}

// Positions lists all open positions.
func (h *handler) Positions(w http.ResponseWriter, r *http.Request) {
	positions := h.status.Positions()
	views := make([]positionView, 0, len(positions))
	for _, p := range positions {
		views = append(views, positionView{
			Mint:              p.Mint,
			EntryPrice:        p.EntryPrice,
			InitialAmount:     p.InitialAmount,
			CurrentAmount:     p.CurrentAmount,
			CostSOL:           p.CostSOL,
			RealizedProfitSOL: p.RealizedProfitSOL,
			TakeProfitIndex:   p.TakeProfitIndex,
			CreatedAt:         p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"positions": views,
		"count":     len(views),
	})
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}
