package risk

import (
	"context"
	"sync"
	"time"

	"swingTraderBot/internal/ports"
)

// BudgetConfig holds configuration for the daily risk budget.
type BudgetConfig struct {
	LossLimitPct float64 // e.g., -5.0; Opens are blocked once below this
}

// DailyBudget tracks the cumulative realized profit percent for the
// current calendar day. Once the accumulated value drops below the loss
// limit, no new positions may be opened for the rest of the day;
// existing positions may still be closed. The budget survives restarts
// through the BudgetStore snapshot.
type DailyBudget struct {
	cfg    BudgetConfig
	store  ports.BudgetStore
	logger ports.Logger

	mu        sync.Mutex
	profitPct float64
	day       time.Time // midnight of the tracked day, local time
}

// NewDailyBudget creates a daily budget tracker.
func NewDailyBudget(cfg BudgetConfig, store ports.BudgetStore, logger ports.Logger) *DailyBudget {
	return &DailyBudget{cfg: cfg, store: store, logger: logger}
}

func dayOf(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

// Load restores the budget snapshot from the store. A snapshot from an
// earlier day is discarded so the new day starts at zero.
func (b *DailyBudget) Load(ctx context.Context, now time.Time) error {
	profitPct, day, ok, err := b.store.Load(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.day = dayOf(now)
	// The store hands the day back in UTC; normalize before comparing.
	if ok && dayOf(day.In(now.Location())).Equal(b.day) {
		b.profitPct = profitPct
		b.logger.Info(ctx, "Restored daily budget snapshot", map[string]interface{}{"profitPct": profitPct, "day": b.day.Format("2006-01-02")})
	} else {
		b.profitPct = 0
		b.logger.Info(ctx, "Starting fresh daily budget", map[string]interface{}{"day": b.day.Format("2006-01-02")})
	}
	return nil
}

// Rollover resets the accumulated profit when the calendar day has
// changed. It is idempotent and must be evaluated once per cycle before
// any decision consults the budget. Returns true when a reset happened.
func (b *DailyBudget) Rollover(ctx context.Context, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	today := dayOf(now)
	if b.day.Equal(today) {
		return false
	}
	b.logger.Info(ctx, "New trading day, resetting daily budget", map[string]interface{}{
		"previousDay":       b.day.Format("2006-01-02"),
		"previousProfitPct": b.profitPct,
	})
	b.profitPct = 0
	b.day = today
	if err := b.store.Save(ctx, b.profitPct, b.day); err != nil {
		b.logger.Error(ctx, err, "Failed to persist budget reset")
	}
	return true
}

// AddRealized folds a realized profit percent into the budget and
// persists the snapshot. It returns true when this addition crossed the
// loss limit, so the caller can alert exactly once per day.
func (b *DailyBudget) AddRealized(ctx context.Context, profitPct float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	wasExhausted := b.profitPct < b.cfg.LossLimitPct
	b.profitPct += profitPct
	if err := b.store.Save(ctx, b.profitPct, b.day); err != nil {
		b.logger.Error(ctx, err, "Failed to persist budget snapshot", map[string]interface{}{"profitPct": b.profitPct})
	}
	return !wasExhausted && b.profitPct < b.cfg.LossLimitPct
}

// Exhausted reports whether the daily loss limit has been breached.
func (b *DailyBudget) Exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profitPct < b.cfg.LossLimitPct
}

// ProfitPct returns the accumulated realized profit percent for the day.
func (b *DailyBudget) ProfitPct() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profitPct
}
