package domain

// OrderIntent describes one attempted order submission. Intents are
// ephemeral and never persisted.
type OrderIntent struct {
	Symbol    string         // Instrument to trade
	BrokerID  string         // Broker-side instrument identifier
	Direction OrderDirection // BUY or SELL
	Quantity  int            // Requested quantity in lots
	LotSize   int            // Units per lot, for brokers quoting in units
	ClientID  string         // Client-assigned order identifier
}

// ExecutionResult reports the outcome of a submitted order.
// A zero FilledQuantity means the order did not execute.
type ExecutionResult struct {
	FilledQuantity int     // Lots actually filled
	FillPrice      float64 // Average fill price
}
