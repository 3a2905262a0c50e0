package risk

import (
	"fmt"

	"swingTraderBot/internal/ports"
)

// Levels are the protective price levels computed at position entry.
type Levels struct {
	StopLoss   float64
	TakeProfit float64
}

// ModelConfig holds the volatility coefficients for level calculation.
type ModelConfig struct {
	StopLossCoef   float64 // e.g., 2.0
	TakeProfitCoef float64 // e.g., 3.0
}

// Model derives stop-loss and take-profit levels from entry price and
// current volatility.
type Model struct {
	cfg ModelConfig
}

// NewModel creates a risk model after validating the coefficients.
func NewModel(cfg ModelConfig) (*Model, error) {
	if cfg.StopLossCoef <= 0 {
		return nil, fmt.Errorf("stop loss coefficient must be positive, got %f", cfg.StopLossCoef)
	}
	if cfg.TakeProfitCoef <= 0 {
		return nil, fmt.Errorf("take profit coefficient must be positive, got %f", cfg.TakeProfitCoef)
	}
	return &Model{cfg: cfg}, nil
}

// Levels computes the protective levels for a new position. It returns
// ErrInvalidRiskInput when entryPrice or atr is not positive; the caller
// must refuse to open the position in that case.
func (m *Model) Levels(entryPrice, atr float64) (Levels, error) {
	if entryPrice <= 0 {
		return Levels{}, fmt.Errorf("%w: entry price must be positive, got %f", ports.ErrInvalidRiskInput, entryPrice)
	}
	if atr <= 0 {
		return Levels{}, fmt.Errorf("%w: ATR must be positive, got %f", ports.ErrInvalidRiskInput, atr)
	}
	return Levels{
		StopLoss:   entryPrice - m.cfg.StopLossCoef*atr,
		TakeProfit: entryPrice + m.cfg.TakeProfitCoef*atr,
	}, nil
}
