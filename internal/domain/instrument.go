package domain

// Instrument is the immutable identity of a tradable asset.
// The universe of instruments is fixed for the lifetime of a run.
type Instrument struct {
	Symbol   string // Human-readable ticker (e.g., "SBER", "ETHUSDT")
	BrokerID string // Identifier the broker expects in API calls
	LotSize  int    // Minimum tradable unit multiple
}
