// Package decider maps current indicators, price, ledger state and risk
// budget to a single action per instrument per cycle.
package decider

import (
	"context"
	"fmt"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/indicators"
	"swingTraderBot/internal/ports"
)

// Config holds the decision thresholds.
type Config struct {
	RSIOversold             float64 // e.g., 32.0; below this an Open is considered
	RSIOverbought           float64 // e.g., 60.0; above this a held position is closed
	TakeProfitTriggerFactor float64 // e.g., 1.005; price-gain exit relative to entry
}

// Input is everything a decision depends on. Position is nil when no
// position is held for the instrument.
type Input struct {
	Snapshot        indicators.Snapshot
	CurrentPrice    float64
	Position        *domain.Position
	UnderCapacity   bool
	BudgetExhausted bool
}

// Decider implements the per-instrument decision rules. Decide has no
// side effects beyond debug logging.
type Decider struct {
	cfg    Config
	logger ports.Logger
}

// New creates a Decider after validating the thresholds.
func New(cfg Config, logger ports.Logger) (*Decider, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for decider")
	}
	if cfg.RSIOversold < 0 || cfg.RSIOverbought > 100 || cfg.RSIOversold >= cfg.RSIOverbought {
		return nil, fmt.Errorf("invalid RSI thresholds: oversold=%f overbought=%f", cfg.RSIOversold, cfg.RSIOverbought)
	}
	if cfg.TakeProfitTriggerFactor <= 1.0 {
		return nil, fmt.Errorf("take profit trigger factor must exceed 1.0, got %f", cfg.TakeProfitTriggerFactor)
	}
	return &Decider{cfg: cfg, logger: logger}, nil
}

// Decide evaluates the rules in precedence order:
//  1. no position, RSI oversold, ledger under capacity, budget intact -> Open
//  2. position held and (RSI overbought or price reached the gain trigger) -> Close
//  3. otherwise -> Hold
//
// The price-gain trigger compares against the position's entry price and
// is independent of the stop-loss/take-profit levels stored at entry;
// those levels are audit data and are not consulted here.
func (d *Decider) Decide(ctx context.Context, in Input) domain.Action {
	rsi := in.Snapshot.RSI

	if in.Position == nil {
		if rsi < d.cfg.RSIOversold && in.UnderCapacity && !in.BudgetExhausted {
			d.logger.Debug(ctx, "Entry conditions met", map[string]interface{}{
				"rsi":          rsi,
				"oversold":     d.cfg.RSIOversold,
				"currentPrice": in.CurrentPrice,
			})
			return domain.ActionOpen
		}
		return domain.ActionHold
	}

	if rsi > d.cfg.RSIOverbought || in.CurrentPrice >= d.cfg.TakeProfitTriggerFactor*in.Position.EntryPrice {
		d.logger.Debug(ctx, "Exit conditions met", map[string]interface{}{
			"rsi":          rsi,
			"overbought":   d.cfg.RSIOverbought,
			"currentPrice": in.CurrentPrice,
			"entryPrice":   in.Position.EntryPrice,
		})
		return domain.ActionClose
	}

	return domain.ActionHold
}
