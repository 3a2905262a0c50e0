package ports

import "context"

// Notifier delivers fire-and-forget chat messages about confirmed fills
// and risk events. Implementations must never block the trading cycle;
// delivery failures are logged and swallowed.
type Notifier interface {
	Notify(ctx context.Context, message string)
}
