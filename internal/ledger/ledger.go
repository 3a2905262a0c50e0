// Package ledger holds the authoritative record of open positions. All
// mutation goes through the Ledger's API behind a single mutex, so the
// capacity and one-position-per-instrument invariants hold even when
// instrument evaluations run concurrently.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"
)

// Ledger is the in-memory view of open positions, backed by a durable
// PositionStore. The store is written before the in-memory view is
// updated, so a failed write never leaves phantom state behind.
type Ledger struct {
	store        ports.PositionStore
	logger       ports.Logger
	maxPositions int

	mu        sync.Mutex
	positions map[string]*domain.Position
}

// New creates a Ledger. Call Load before first use.
func New(store ports.PositionStore, logger ports.Logger, maxPositions int) (*Ledger, error) {
	if store == nil || logger == nil {
		return nil, fmt.Errorf("store and logger are required for ledger")
	}
	if maxPositions <= 0 {
		return nil, fmt.Errorf("maxPositions must be positive, got %d", maxPositions)
	}
	return &Ledger{
		store:        store,
		logger:       logger,
		maxPositions: maxPositions,
		positions:    make(map[string]*domain.Position),
	}, nil
}

// Load reconstructs the ledger from durable storage. A missing or empty
// store yields an empty ledger. Duplicate or over-capacity snapshots are
// rejected: the process must not trade on state whose invariants are
// already broken.
func (l *Ledger) Load(ctx context.Context) error {
	stored, err := l.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrStoreCorrupted, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	positions := make(map[string]*domain.Position, len(stored))
	for _, pos := range stored {
		if _, exists := positions[pos.Symbol]; exists {
			return fmt.Errorf("%w: duplicate position for %s in snapshot", ports.ErrStoreCorrupted, pos.Symbol)
		}
		positions[pos.Symbol] = pos
	}
	if len(positions) > l.maxPositions {
		return fmt.Errorf("%w: snapshot holds %d positions, cap is %d", ports.ErrStoreCorrupted, len(positions), l.maxPositions)
	}

	l.positions = positions
	l.logger.Info(ctx, "Position ledger loaded", map[string]interface{}{"openPositions": len(positions), "cap": l.maxPositions})
	return nil
}

// HasPosition reports whether an open position exists for the symbol.
func (l *Ledger) HasPosition(symbol string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.positions[symbol]
	return ok
}

// Get returns a copy of the open position for the symbol, if any.
func (l *Ledger) Get(symbol string) (domain.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.positions[symbol]
	if !ok {
		return domain.Position{}, false
	}
	return *pos, true
}

// Count returns the number of open positions.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.positions)
}

// UnderCapacity reports whether a new position may still be opened.
func (l *Ledger) UnderCapacity() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.positions) < l.maxPositions
}

// Open inserts a new position. It fails with ErrCapacityExceeded when
// the global cap is reached and ErrDuplicatePosition when a position
// already exists for the instrument. The capacity and duplicate checks
// and the insert happen under one lock, so concurrent opens cannot race.
func (l *Ledger) Open(ctx context.Context, symbol string, entryPrice float64, quantity int, entryTime time.Time, stopLoss, takeProfit float64) error {
	if entryPrice <= 0 || quantity <= 0 {
		return fmt.Errorf("%w: entry price and quantity must be positive", ports.ErrInvalidRequest)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.positions) >= l.maxPositions {
		return fmt.Errorf("%w: %d/%d", ports.ErrCapacityExceeded, len(l.positions), l.maxPositions)
	}
	if _, exists := l.positions[symbol]; exists {
		return fmt.Errorf("%w: %s", ports.ErrDuplicatePosition, symbol)
	}

	pos := &domain.Position{
		Symbol:     symbol,
		EntryPrice: entryPrice,
		Quantity:   quantity,
		EntryTime:  entryTime,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	}
	if err := l.store.Insert(ctx, pos); err != nil {
		return fmt.Errorf("failed to persist position for %s: %w", symbol, err)
	}
	l.positions[symbol] = pos

	l.logger.Info(ctx, "Position opened", map[string]interface{}{
		"symbol":     symbol,
		"entryPrice": entryPrice,
		"quantity":   quantity,
		"stopLoss":   stopLoss,
		"takeProfit": takeProfit,
		"openCount":  len(l.positions),
	})
	return nil
}

// Close removes the position for the symbol and returns it for profit
// computation. It fails with ErrNoSuchPosition when absent.
func (l *Ledger) Close(ctx context.Context, symbol string) (domain.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, exists := l.positions[symbol]
	if !exists {
		return domain.Position{}, fmt.Errorf("%w: %s", ports.ErrNoSuchPosition, symbol)
	}
	if err := l.store.Delete(ctx, symbol); err != nil {
		return domain.Position{}, fmt.Errorf("failed to remove persisted position for %s: %w", symbol, err)
	}
	delete(l.positions, symbol)

	l.logger.Info(ctx, "Position closed", map[string]interface{}{"symbol": symbol, "openCount": len(l.positions)})
	return *pos, nil
}
