package indicators

import (
	"fmt"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"
)

// computeRSI calculates the Relative Strength Index over the full
// available window using Wilder's smoothing method. Only the latest
// value is produced.
func computeRSI(bars []*domain.Bar, period int) (float64, error) {
	if len(bars) <= period {
		return 0, fmt.Errorf("%w: need more than %d bars for RSI, got %d", ports.ErrInsufficientData, period, len(bars))
	}

	// Calculate price changes
	changes := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		changes = append(changes, bars[i].Close-bars[i-1].Close)
	}

	// Calculate initial average gain and loss
	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		if changes[i] > 0 {
			avgGain += changes[i]
		} else {
			avgLoss -= changes[i]
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Smooth the averages over the remaining changes using Wilder's method
	for i := period; i < len(changes); i++ {
		if changes[i] > 0 {
			avgGain = (avgGain*float64(period-1) + changes[i]) / float64(period)
			avgLoss = (avgLoss * float64(period-1)) / float64(period)
		} else {
			avgGain = (avgGain * float64(period-1)) / float64(period)
			avgLoss = (avgLoss*float64(period-1) - changes[i]) / float64(period)
		}
	}

	// Handle edge cases
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, nil // Neutral if no change
		}
		return 100, nil // Max RSI if only gains
	}

	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))

	// Ensure RSI is within bounds
	if rsi > 100 {
		rsi = 100
	} else if rsi < 0 {
		rsi = 0
	}

	return rsi, nil
}
