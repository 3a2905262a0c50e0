// Package metrics exposes operational counters for the trading loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesCompleted = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_cycles_completed_total", Help: "Trading cycles completed"})
	Decisions       = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bot_decisions_total", Help: "Decisions by action"}, []string{"action"})
	ExecutionErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_execution_errors_total", Help: "Order executions that failed or filled nothing"})
	SkippedSymbols  = prometheus.NewCounter(prometheus.CounterOpts{Name: "bot_instruments_skipped_total", Help: "Per-instrument evaluations skipped with a recoverable error"})
	OpenPositions   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "bot_open_positions", Help: "Currently open positions"})
	DailyProfitPct  = prometheus.NewGauge(prometheus.GaugeOpts{Name: "bot_daily_profit_pct", Help: "Accumulated realized profit percent for the day"})
)

func init() {
	prometheus.MustRegister(
		CyclesCompleted, Decisions, ExecutionErrors,
		SkippedSymbols, OpenPositions, DailyProfitPct,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
