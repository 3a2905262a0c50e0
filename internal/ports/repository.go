package ports

import (
	"context"
	"time"

	"swingTraderBot/internal/domain"
)

// PositionStore persists the Position Ledger snapshot. Every mutation
// must be all-or-nothing: a crash mid-write must never leave a partial
// position behind.
type PositionStore interface {
	// Insert saves a new open position.
	Insert(ctx context.Context, pos *domain.Position) error
	// Delete removes the position for a symbol.
	Delete(ctx context.Context, symbol string) error
	// LoadAll reconstructs all open positions. A missing or empty store
	// yields an empty slice, not an error.
	LoadAll(ctx context.Context) ([]*domain.Position, error)
}

// TransactionLog is the append-only audit log of confirmed fills.
type TransactionLog interface {
	// Append writes one record and returns its assigned ID.
	Append(ctx context.Context, rec *domain.TransactionRecord) (int64, error)
	// FindSince retrieves all records with Timestamp >= from, oldest first.
	FindSince(ctx context.Context, from time.Time) ([]*domain.TransactionRecord, error)
	// FindAll retrieves every record, oldest first.
	FindAll(ctx context.Context) ([]*domain.TransactionRecord, error)
}

// BudgetStore persists the daily risk budget snapshot.
type BudgetStore interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, profitPct float64, day time.Time) error
	// Load retrieves the stored snapshot. ok is false when no snapshot
	// has been written yet.
	Load(ctx context.Context) (profitPct float64, day time.Time, ok bool, err error)
}
