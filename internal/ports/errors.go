package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Decision Errors (recoverable, instrument skipped for the cycle)
	ErrInsufficientData = errors.New("not enough price data for indicator calculation")
	ErrInvalidRiskInput = errors.New("invalid input for risk level calculation")

	// Ledger Errors (contract violations, recoverable)
	ErrCapacityExceeded  = errors.New("maximum number of open positions reached")
	ErrDuplicatePosition = errors.New("position already exists for instrument")
	ErrNoSuchPosition    = errors.New("no open position exists for instrument")

	// Execution Errors (broker/network, recoverable, no state mutation)
	ErrInsufficientFunds = errors.New("insufficient funds for operation")
	ErrExecutionFailed   = errors.New("order execution failed")
	ErrRateLimited       = errors.New("API rate limit exceeded")
	ErrBrokerUnavailable = errors.New("broker API is unavailable")

	// Store Errors (fatal at startup: ledger invariants cannot be guaranteed
	// without a readable store)
	ErrStoreCorrupted = errors.New("durable store is corrupted or unreadable")
)
