package domain

import "time"

// TransactionRecord is an append-only audit entry written after a
// confirmed fill. Records are never mutated or deleted.
type TransactionRecord struct {
	ID        int64          // Unique identifier (from storage)
	Timestamp time.Time      // When the fill was confirmed
	Symbol    string         // Instrument traded
	Action    OrderDirection // BUY or SELL
	Price     float64        // Fill price
	Quantity  int            // Filled quantity in lots
	ProfitPct float64        // Realized profit percent (SELL records only)
}
