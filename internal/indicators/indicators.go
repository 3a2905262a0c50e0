package indicators

import (
	"fmt"
	"math"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"
)

// Snapshot holds the indicator values computed from a bar sequence at a
// point in time. Snapshots are derived data, recomputed every cycle and
// never persisted.
type Snapshot struct {
	ATR float64 // Average true range, >= 0
	RSI float64 // Relative strength index, in [0, 100]
}

// Config holds the lookback periods for the engine.
type Config struct {
	ATRPeriod int // e.g., 14
	RSIPeriod int // e.g., 14
}

// Engine computes indicator snapshots from price history. Compute is
// pure and deterministic; the engine itself carries only configuration.
type Engine struct {
	cfg Config
}

// NewEngine creates an indicator engine after validating the periods.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.ATRPeriod <= 0 {
		return nil, fmt.Errorf("ATR period must be positive, got %d", cfg.ATRPeriod)
	}
	if cfg.RSIPeriod <= 0 {
		return nil, fmt.Errorf("RSI period must be positive, got %d", cfg.RSIPeriod)
	}
	return &Engine{cfg: cfg}, nil
}

// RequiredDataPoints returns the minimum number of bars needed for a
// full-strength snapshot. RSI looks one step further back than its period.
func (e *Engine) RequiredDataPoints() int {
	max := e.cfg.ATRPeriod
	if e.cfg.RSIPeriod > max {
		max = e.cfg.RSIPeriod
	}
	return max + 1
}

// Compute derives a Snapshot from the given bars (ordered oldest to
// newest). It returns ErrInsufficientData when fewer than two bars are
// available or when either indicator is undefined for the window; the
// caller must treat the instrument as Hold for the cycle.
func (e *Engine) Compute(bars []*domain.Bar) (Snapshot, error) {
	if len(bars) < 2 {
		return Snapshot{}, fmt.Errorf("%w: need at least 2 bars, got %d", ports.ErrInsufficientData, len(bars))
	}

	atr, err := computeATR(bars, e.cfg.ATRPeriod)
	if err != nil {
		return Snapshot{}, err
	}

	rsi, err := computeRSI(bars, e.cfg.RSIPeriod)
	if err != nil {
		return Snapshot{}, err
	}

	// Undefined values must never reach price-level math.
	if math.IsNaN(atr) || math.IsInf(atr, 0) || math.IsNaN(rsi) || math.IsInf(rsi, 0) {
		return Snapshot{}, fmt.Errorf("%w: indicator value is not finite (atr=%v rsi=%v)", ports.ErrInsufficientData, atr, rsi)
	}

	return Snapshot{ATR: atr, RSI: rsi}, nil
}
