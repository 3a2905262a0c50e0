package ports

import (
	"context"
	"time"

	"swingTraderBot/internal/domain"
)

// BrokerClient defines the interface for interacting with the external
// execution venue. All calls are fallible and must return within the
// adapter's configured timeout; a timeout is surfaced as ErrTimeout and
// treated by the caller as an execution failure, never a fatal error.
type BrokerClient interface {
	// GetLastPrice retrieves the most recent traded price for an instrument.
	GetLastPrice(ctx context.Context, instrument domain.Instrument) (float64, error)

	// GetAvailableCash retrieves the free cash balance of the account.
	GetAvailableCash(ctx context.Context) (float64, error)

	// GetRecentBars retrieves OHLC bars for the instrument over [from, to],
	// ordered oldest to newest, at the given interval (e.g., "5m").
	GetRecentBars(ctx context.Context, instrument domain.Instrument, interval string, from, to time.Time) ([]*domain.Bar, error)

	// SubmitOrder places a market order for the given intent.
	// A nil error with FilledQuantity == 0 means the broker accepted the
	// order but nothing executed; callers must not mutate state on it.
	SubmitOrder(ctx context.Context, intent domain.OrderIntent) (*domain.ExecutionResult, error)
}
