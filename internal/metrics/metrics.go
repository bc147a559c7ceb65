// Package metrics exposes the bot's Prometheus instrumentation:
//
//	sniper_buys_total{result}        - buy attempts by outcome (opened|rejected|failed)
//	sniper_sells_total{reason,result} - sells by trigger and outcome
//	sniper_buy_retries_total          - retry attempts drained from the queue
//	sniper_open_positions             - currently open positions (gauge)
//	sniper_realized_profit_sol        - cumulative realized proceeds minus cost, in SOL
//
// All collectors are registered in init() and served by the status server at
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	buys = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_buys_total",
			Help: "Buy attempts by outcome",
		},
		[]string{"result"},
	)

	sells = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_sells_total",
			Help: "Sell executions by trigger reason and outcome",
		},
		[]string{"reason", "result"},
	)

	retries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sniper_buy_retries_total",
			Help: "Buy retries drained from the retry queue",
		},
	)

	openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sniper_open_positions",
			Help: "Currently open positions",
		},
	)

	realizedProfit = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sniper_realized_profit_sol",
			Help: "Cumulative realized profit in SOL across closed positions",
		},
	)
)

func init() {
	prometheus.MustRegister(buys, sells, retries, openPositions, realizedProfit)
}

// BuyRecorded counts one buy attempt with the given outcome.
func BuyRecorded(result string) { buys.WithLabelValues(result).Inc() }

// SellRecorded counts one sell with its trigger reason and outcome.
func SellRecorded(reason, result string) { sells.WithLabelValues(reason, result).Inc() }

// RetryDrained counts one retry attempt taken off the queue.
func RetryDrained() { retries.Inc() }

// SetOpenPositions updates the open-position gauge.
func SetOpenPositions(n int) { openPositions.Set(float64(n)) }

// AddRealizedProfit accumulates realized profit from a closed position.
func AddRealizedProfit(sol float64) { realizedProfit.Add(sol) }
