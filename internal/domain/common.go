package domain

// OrderDirection represents the direction of an order (BUY or SELL).
type OrderDirection string

const (
	Buy  OrderDirection = "BUY"
	Sell OrderDirection = "SELL"
)

// Action is the outcome of a decision cycle for a single instrument.
type Action string

const (
	ActionOpen  Action = "OPEN"
	ActionClose Action = "CLOSE"
	ActionHold  Action = "HOLD"
)
