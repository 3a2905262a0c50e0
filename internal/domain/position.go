package domain

import "time"

// Position represents an open holding in a single instrument.
// At most one Position may exist per instrument at any time; the
// Position Ledger owns every Position and enforces that invariant.
type Position struct {
	Symbol     string    // Instrument the position is held in
	EntryPrice float64   // Price at which the position was entered
	Quantity   int       // Size of the position in lots
	EntryTime  time.Time // Timestamp when the position was entered
	StopLoss   float64   // Stop-loss level computed at entry
	TakeProfit float64   // Take-profit level computed at entry
}
